// Command seed creates the demo accounts in the configured database. Accounts
// that already exist are left untouched.
package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gurbetbiz/account-service/config"
	database "github.com/gurbetbiz/account-service/internal/core"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/internal/core/repository/psql"
	logicv1 "github.com/gurbetbiz/account-service/internal/logic/v1"
	"github.com/gurbetbiz/account-service/middleware"
)

const demoPassword = "test123"

var demoAccounts = []domain.RegisterRequest{
	{
		Email:          "test@gurbet.biz",
		Password:       demoPassword,
		FirstName:      "Test",
		LastName:       "User",
		CountryCode:    "+90",
		Phone:          "5551234567",
		BirthDay:       "15",
		BirthMonth:     "6",
		BirthYear:      "1990",
		Gender:         "male",
		IdentityNumber: "12345678901",
	},
	{
		Email:          "demo@gurbet.biz",
		Password:       demoPassword,
		FirstName:      "Demo",
		LastName:       "User",
		CountryCode:    "+90",
		Phone:          "5559876543",
		BirthDay:       "20",
		BirthMonth:     "8",
		BirthYear:      "1985",
		Gender:         "female",
		IdentityNumber: "98765432109",
	},
}

func main() {
	cfg := config.Load()

	logger, err := middleware.NewLogger(config.LoggingConfig{Level: cfg.Logging.Level, Format: "console"})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Host == "" {
		logger.Fatal("DB_HOST is required for seeding")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(cfg.Database.BuildDSN(), logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	accounts := psql.NewAccountRepository(pool)
	validator := logicv1.NewRecordValidator()
	svc := logicv1.NewAccountService(accounts, logicv1.NewOwnershipGuard(accounts, logger), validator)

	var signer *middleware.JWTResolver
	if cfg.Auth.Mode == config.AuthModeJWT && cfg.Auth.JWTSecret != "" {
		signer = middleware.NewJWTResolver(cfg.Auth.JWTSecret)
	}

	for _, req := range demoAccounts {
		user, err := svc.Register(ctx, req)
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			logger.Info("Account already exists", zap.String("email", req.Email))
			continue
		case err != nil:
			logger.Fatal("Failed to seed account", zap.String("email", req.Email), zap.Error(err))
		}

		fields := []zap.Field{
			zap.String("id", user.ID),
			zap.String("email", user.Email),
			zap.String("password", demoPassword),
		}
		if signer != nil {
			token, err := signer.Sign(domain.Identity{Subject: user.ID, Email: user.Email}, 24*time.Hour)
			if err != nil {
				logger.Warn("Failed to sign development token", zap.Error(err))
			} else {
				fields = append(fields, zap.String("token", token))
			}
		}
		logger.Info("Account seeded", fields...)
	}
}
