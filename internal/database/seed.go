package database

import (
	"fmt"
	"log"
	"os"

	"reimburse/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the initial company and its three accounts (Admin, a
// Manager reporting to the Admin, an Employee reporting to the Manager)
// on first run. It is a no-op when any company already exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Company{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing companies: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "changeme123" // Development fallback only
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		company := model.Company{
			Name:             "Acme Global Inc.",
			DefaultCurrency:  "USD",
			ApprovalTemplate: model.DefaultApprovalFlow(),
		}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("failed to create seed company: %w", err)
		}

		admin := model.User{
			CompanyID: company.ID,
			Name:      "Admin User",
			Email:     "admin@acme.test",
			Password:  string(hashed),
			Role:      model.RoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create seed admin: %w", err)
		}

		manager := model.User{
			CompanyID: company.ID,
			Name:      "Jane Manager",
			Email:     "manager@acme.test",
			Password:  string(hashed),
			Role:      model.RoleManager,
			ManagerID: &admin.ID,
		}
		if err := tx.Create(&manager).Error; err != nil {
			return fmt.Errorf("failed to create seed manager: %w", err)
		}

		employee := model.User{
			CompanyID: company.ID,
			Name:      "Tom Employee",
			Email:     "employee@acme.test",
			Password:  string(hashed),
			Role:      model.RoleEmployee,
			ManagerID: &manager.ID,
		}
		if err := tx.Create(&employee).Error; err != nil {
			return fmt.Errorf("failed to create seed employee: %w", err)
		}

		log.Println("--- Initialization Complete ---")
		log.Printf("Company ID: %s", company.ID)
		log.Printf("Admin User ID: %s", admin.ID)
		log.Printf("Manager User ID: %s", manager.ID)
		log.Printf("Employee User ID: %s", employee.ID)

		return nil
	})
}
