package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spareshop-api/config"
	"spareshop-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := models.User{Email: email, Username: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedPart(t *testing.T, db *gorm.DB, name string, stock int, price int64) models.Sparepart {
	t.Helper()
	p := models.Sparepart{Name: name, Stock: stock, Price: price}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Sparepart
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func actorFor(u models.User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}
