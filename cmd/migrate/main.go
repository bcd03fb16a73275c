package main

import (
	"flag"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillboard/quill-backend/internal/config"
	"github.com/quillboard/quill-backend/internal/migration"
)

func main() {
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	config.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed")
}
