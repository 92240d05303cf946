package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/internal/repository"
	"github.com/noah-isme/asset-tracker-api/internal/service"
	"github.com/noah-isme/asset-tracker-api/pkg/config"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	"github.com/noah-isme/asset-tracker-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	created, err := service.EnsureUsers(ctx, repository.NewUserRepository(db), []service.SeedUser{
		{Username: "admin", Email: "admin@example.com", FullName: "Administrator", Password: cfg.Seed.AdminPassword, Role: models.RoleAdmin},
		{Username: "staff", Email: "staff@example.com", FullName: "Staff", Password: cfg.Seed.StaffPassword, Role: models.RoleStaff},
	})
	if err != nil {
		logr.Fatal("failed to seed users", zap.Error(err))
	}
	if len(created) == 0 {
		logr.Info("users already present, nothing seeded")
		return
	}
	logr.Info("users seeded", zap.Strings("usernames", created))
}
