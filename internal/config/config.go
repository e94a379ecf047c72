package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	Environment   string
	HTTPAddr      string
	MigrationsDir string

	// Ключ paseto-токенов (hex). Пустой — ключ генерируется на старте,
	// токены живут до рестарта.
	TokenKey string

	// Политика библиотеки. Константы политики держим в конфиге,
	// чтобы менять без правки state machine.
	LendingPeriodDays int
	StartingCredits   int64
	ConsultationPrice int64 // в кредитах

	// Опциональный телеграм-дайджест "к возврату сегодня"
	TelegramToken string
	AdminChatID   int64
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		Environment:       os.Getenv("ENV"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		MigrationsDir:     os.Getenv("MIGRATIONS_DIR"),
		TokenKey:          os.Getenv("TOKEN_KEY"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		LendingPeriodDays: 14,
		StartingCredits:   100,
		ConsultationPrice: 50,
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	if v := os.Getenv("LENDING_PERIOD_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid LENDING_PERIOD_DAYS: %q", v)
		}
		cfg.LendingPeriodDays = days
	}

	if v := os.Getenv("STARTING_CREDITS"); v != "" {
		credits, err := strconv.ParseInt(v, 10, 64)
		if err != nil || credits < 0 {
			return nil, fmt.Errorf("invalid STARTING_CREDITS: %q", v)
		}
		cfg.StartingCredits = credits
	}

	if v := os.Getenv("CONSULTATION_PRICE"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid CONSULTATION_PRICE: %q", v)
		}
		cfg.ConsultationPrice = price
	}

	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %q", v)
		}
		cfg.AdminChatID = chatID
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
