package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/models"
)

type Config struct {
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret string `env:"JWT_SECRET"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	Brevo    Brevo    `envPrefix:"BREVO_"`
	Twilio   Twilio   `envPrefix:"TWILIO_"`

	AdminWhatsApp string `env:"ADMIN_WHATSAPP"`

	KafkaBrokers []string `env:"KAFKA_BROKERS"`
}

type Razorpay struct {
	KeyID     string `env:"KEY_ID"`
	KeySecret string `env:"KEY_SECRET"`
	BaseURL   string `env:"BASE_URL" envDefault:"https://api.razorpay.com"`
}

type Brevo struct {
	APIKey      string `env:"API_KEY"`
	SenderName  string `env:"SENDER_NAME"`
	SenderEmail string `env:"SENDER_EMAIL"`
	BaseURL     string `env:"BASE_URL" envDefault:"https://api.brevo.com"`
}

type Twilio struct {
	AccountSID     string `env:"ACCOUNT_SID"`
	AuthToken      string `env:"AUTH_TOKEN"`
	WhatsAppNumber string `env:"WHATSAPP_NUMBER"`
	BaseURL        string `env:"BASE_URL" envDefault:"https://api.twilio.com"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	MustNonEmpty(cfg.Razorpay.KeySecret, "RAZORPAY_KEY_SECRET")

	return cfg, nil
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
