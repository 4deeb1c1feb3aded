package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "password"
)

type dependencies struct {
	loadConfig func() (commons.Config, error)
	openDB     func(driverName, dataSourceName string) (*sql.DB, error)
	newUUID    func() uuid.UUID
	timeNow    func() time.Time
	loadEnv    func(...string) error
	getEnv     func(string) string
}

var defaultDeps = dependencies{
	loadConfig: commons.LoadConfig,
	openDB:     sql.Open,
	newUUID:    uuid.New,
	timeNow:    time.Now,
	loadEnv:    godotenv.Load,
	getEnv:     os.Getenv,
}

func main() {
	if err := run(context.Background(), defaultDeps); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, deps dependencies) error {
	if err := deps.loadEnv(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	config, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	db, err := deps.openDB("postgres", config.PostgresConn)
	if err != nil {
		return fmt.Errorf("error opening database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}

	admin, err := createAdminUser(ctx, db, deps)
	if err != nil {
		return fmt.Errorf("error creating admin user: %w", err)
	}

	fmt.Printf("Admin user %q created successfully! API key: %s\n", admin.Username, admin.APIKey)
	return nil
}

func createAdminUser(ctx context.Context, db *sql.DB, deps dependencies) (model.User, error) {
	username := defaultAdminUsername
	password := defaultAdminPassword
	if deps.getEnv != nil {
		if v := deps.getEnv("ADMIN_USERNAME"); v != "" {
			username = v
		}
		if v := deps.getEnv("ADMIN_PASSWORD"); v != "" {
			password = v
		}
	}

	now := deps.timeNow()
	adminUser := model.UserDB{
		ID:        deps.newUUID(),
		Username:  username,
		Role:      model.RoleAdmin,
		APIKey:    deps.newUUID().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("error hashing password: %w", err)
	}
	adminUser.Password = string(hashedPassword)

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, role, api_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, adminUser.ID, adminUser.Username, adminUser.Password, adminUser.Role, adminUser.APIKey, adminUser.CreatedAt, adminUser.UpdatedAt)

	if err != nil {
		return model.User{}, fmt.Errorf("error inserting admin user: %w", err)
	}

	return adminUser.ToUser(), nil
}
