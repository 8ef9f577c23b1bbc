package seeders

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spareshop-api/models"
)

type seedUser struct {
	Email    string
	Username string
	Password string
	Role     string
}

var users = []seedUser{
	{Email: "admin@spareshop.local", Username: "admin", Password: "admin12345", Role: models.RoleAdmin},
	{Email: "customer@spareshop.local", Username: "customer", Password: "customer123", Role: models.RoleCustomer},
}

var spareparts = []models.Sparepart{
	{Name: "Kampas Rem Depan", Stock: 40, Price: 65000},
	{Name: "Kampas Rem Belakang", Stock: 35, Price: 55000},
	{Name: "Busi Iridium", Stock: 80, Price: 95000},
	{Name: "Oli Mesin 1L", Stock: 120, Price: 52000},
	{Name: "Filter Udara", Stock: 25, Price: 45000},
	{Name: "Rantai Set", Stock: 15, Price: 210000},
	{Name: "Aki Kering 12V", Stock: 10, Price: 285000},
	{Name: "Lampu Depan LED", Stock: 4, Price: 120000},
	{Name: "Ban Dalam 17\"", Stock: 60, Price: 38000},
	{Name: "Kabel Kopling", Stock: 3, Price: 30000},
}

// Seed inserts the default accounts and a starter catalog. Existing rows,
// matched by email or name, are left alone.
func Seed(db *gorm.DB) error {
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		user := models.User{Email: u.Email, Username: u.Username, Password: string(hash), Role: u.Role}
		if err := db.Where(models.User{Email: u.Email}).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	for _, sp := range spareparts {
		part := sp
		if err := db.Where(models.Sparepart{Name: part.Name}).FirstOrCreate(&part).Error; err != nil {
			return fmt.Errorf("seed sparepart %s: %w", part.Name, err)
		}
	}

	zap.L().Info("seeding finished", zap.Int("users", len(users)), zap.Int("spareparts", len(spareparts)))
	return nil
}
