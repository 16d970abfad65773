package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	SurveyFile  string
	SchemaFile  string
	DataSheet   string
	SchemaSheet string
	ReportPath  string

	TgToken          string
	BotRatePerSecond float64
	HttpAddr         string
	PublicURL        string
	UploadDir        string

	LogLevel  string
	LogFormat string

	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the process wide configuration, reading .env on first use.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}
		config = FromEnv()
	})
	return config
}

// FromEnv builds a Config from the current environment.
func FromEnv() *Config {
	return &Config{
		SurveyFile:  os.Getenv("SURVEY_FILE"),
		SchemaFile:  os.Getenv("SURVEY_SCHEMA_FILE"),
		DataSheet:   getEnv("SURVEY_DATA_SHEET", "raw data"),
		SchemaSheet: getEnv("SURVEY_SCHEMA_SHEET", "schema"),
		ReportPath:  getEnv("REPORT_PATH", "survey_analysis_report.md"),

		TgToken:          os.Getenv("TG_TOKEN"),
		BotRatePerSecond: getFloat("BOT_RATE_PER_SECOND", 1),
		HttpAddr:         getEnv("HTTP_ADDR", ":8005"),
		PublicURL:        getEnv("PUBLIC_URL", "http://localhost:8005"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3PathStyle: getBool("S3_PATH_STYLE", false),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
