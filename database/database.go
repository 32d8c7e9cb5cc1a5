package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"worktime/apperr"
	"worktime/models"
	"worktime/store"
)

var DB *gorm.DB

// Open connects to Postgres. Constraint violations are translated into gorm's
// sentinel errors so the store can map them.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(ParseLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	DB = db
	return db, nil
}

func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate creates or updates the schema, including the unique index on
// (employee_id, day) that backs one work day per employee per date.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Employee{},
		&models.Project{},
		&models.WorkDay{},
		&models.Task{},
		&models.OvertimeParameters{},
	)
}

// SeedAdmin creates the first administrator when no employee with email exists.
// An empty password skips seeding.
func SeedAdmin(ctx context.Context, st store.Store, email, password string, log *slog.Logger) error {
	if password == "" {
		return nil
	}
	_, err := st.FindEmployeeByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Employee{
		Email:        email,
		FirstName:    "Admin",
		LastName:     "Worktime",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := st.InsertEmployee(ctx, &admin); err != nil {
		return err
	}

	log.Info("default admin created", slog.String("email", email))
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
