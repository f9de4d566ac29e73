package database

import (
	"fmt"
	"log"
	"os"

	"paddock/config"
	"paddock/logger"
	"paddock/models"
	"paddock/models/motorsports"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the database selected by DB_DRIVER, migrates it and
// stores the handle globally.
func ConnectDb() {
	cfg := config.AppConfig

	db, err := gorm.Open(dialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	Database = DbInstance{Db: db}
}

func dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn)
	case "sqlite":
		return sqlite.Open(cfg.DBSqlitePath)
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn)
	}
}

// OpenSqlite opens a private sqlite database, migrates it and installs it as
// the global handle. Tests use it with an in-memory name.
func OpenSqlite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=0", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	Database = DbInstance{Db: db}
	return db, nil
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	logger.Log.Info("running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.LoginTracking{},
		&models.Vehicle{},
		&models.Favorite{},
		&models.Reservation{},
		&models.Payment{},
		&models.Review{},
		&models.Dispute{},
		&models.Conversation{},
		&models.Message{},
		&models.Report{},
		&motorsports.DriverProfile{},
		&motorsports.TeamProfile{},
		&motorsports.Endorsement{},
	)
	if err != nil {
		return err
	}

	logger.Log.Info("migrations completed")
	return nil
}

// Ping checks the underlying connection.
func Ping() error {
	if Database.Db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := Database.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
