package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lab-server/entities"
	"lab-server/logger"
)

func Connect(storeTimeout time.Duration) (Database, error) {
	var dsn string

	// Check if DB_URL is provided (connection string)
	dbURL := os.Getenv("DB_URL")
	if dbURL != "" {
		dsn = dbURL

		if !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}

		logger.Info().Msg("connecting to database using DB_URL")
	} else {
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")

		if dbHost == "" || dbPort == "" || dbUser == "" || dbPassword == "" || dbName == "" {
			return nil, fmt.Errorf("missing required database configuration: DB_URL or (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
		}

		sslMode := "require"
		if dbHost == "localhost" || dbHost == "127.0.0.1" {
			sslMode = "disable"
		}

		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			dbHost, dbUser, dbPassword, dbName, dbPort, sslMode)
		logger.Info().Str("sslmode", sslMode).Msg("connecting to database using individual parameters")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(0)

	logger.Info().Msg("database connection established")

	if err := db.AutoMigrate(
		&entities.Command{},
		&entities.RoomPC{},
		&entities.ComputerStatus{},
		&entities.BlockedWebsite{},
		&entities.InstallableApp{},
		&entities.Incident{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	// app names are unique regardless of case
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_installable_apps_name_lower ON installable_apps (LOWER(name))").Error; err != nil {
		return nil, fmt.Errorf("failed to index installable apps: %w", err)
	}

	logger.Info().Msg("database migrations completed")

	return &GormDatabase{DB: db, Timeout: storeTimeout}, nil
}
