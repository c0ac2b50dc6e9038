package database

import (
	"fmt"
	"log"

	"github.com/sangkips/colmado-pos/internal/config"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Users
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog
		&entity.Category{},
		&entity.Product{},

		// Accounts
		&entity.Customer{},
		&entity.CustomerPayment{},
		&entity.Supplier{},
		&entity.SupplierTransaction{},

		// Sales
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.ReceiptSequence{},

		// System
		&entity.IdempotencyKey{},
		&entity.BusinessSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData creates the permissions, the admin and cashier roles and,
// when a password is configured, the first admin user. It is safe to run on
// every start.
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	log.Println("Seeding default data...")

	byName := make(map[string]entity.Permission)
	for role, names := range entity.DefaultRolePermissions() {
		perms := make([]entity.Permission, 0, len(names))
		for _, name := range names {
			p, ok := byName[name]
			if !ok {
				if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
					return fmt.Errorf("seed permission %s: %w", name, err)
				}
				byName[name] = p
			}
			perms = append(perms, p)
		}

		var r entity.Role
		if err := db.Where(entity.Role{Name: role}).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
		if err := db.Model(&r).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed role %s permissions: %w", role, err)
		}
	}

	if admin.Email == "" || admin.Password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin user")
		log.Println("Default data seeding completed")
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", admin.Email).First(&existing).Error; err == nil {
		log.Printf("Admin user already exists: %s", admin.Email)
		log.Println("Default data seeding completed")
		return nil
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}
	name := admin.Name
	if name == "" {
		name = "Administrador"
	}
	user := entity.User{
		Name:     name,
		Email:    admin.Email,
		Password: hashed,
		Active:   true,
		Roles:    []entity.Role{adminRole},
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("Admin user created: %s", admin.Email)

	log.Println("Default data seeding completed")
	return nil
}
