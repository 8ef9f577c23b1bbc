package services

import (
	"context"

	"gorm.io/gorm"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/utils/pagination"
)

// UserService backs the admin listings of accounts and the audit trail.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAuditLogs(ctx context.Context, filter dtos.AuditLogFilter) ([]models.AuditLog, pagination.Meta, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Select("id", "email", "username", "role", "created_at", "updated_at").
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (s *userService) ListAuditLogs(ctx context.Context, filter dtos.AuditLogFilter) ([]models.AuditLog, pagination.Meta, error) {
	p := pagination.New(filter.Page, filter.PageSize)

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var logs []models.AuditLog
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(p.Offset).
		Limit(p.PageSize).
		Find(&logs).Error; err != nil {
		return nil, pagination.Meta{}, err
	}
	return logs, pagination.BuildMeta(p.Page, p.PageSize, total), nil
}
