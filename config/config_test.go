package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"SURVEY_DATA_SHEET", "SURVEY_SCHEMA_SHEET", "REPORT_PATH", "HTTP_ADDR", "BOT_RATE_PER_SECOND", "S3_PATH_STYLE"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "raw data", cfg.DataSheet)
	assert.Equal(t, "schema", cfg.SchemaSheet)
	assert.Equal(t, "survey_analysis_report.md", cfg.ReportPath)
	assert.Equal(t, ":8005", cfg.HttpAddr)
	assert.Equal(t, 1.0, cfg.BotRatePerSecond)
	assert.False(t, cfg.S3PathStyle)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SURVEY_FILE", "survey.xlsx")
	t.Setenv("SURVEY_DATA_SHEET", "responses")
	t.Setenv("TG_TOKEN", "token")
	t.Setenv("BOT_RATE_PER_SECOND", "2.5")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")

	cfg := FromEnv()
	assert.Equal(t, "survey.xlsx", cfg.SurveyFile)
	assert.Equal(t, "responses", cfg.DataSheet)
	assert.Equal(t, "token", cfg.TgToken)
	assert.Equal(t, 2.5, cfg.BotRatePerSecond)
	assert.True(t, cfg.S3PathStyle)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
}

func TestFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("BOT_RATE_PER_SECOND", "-1")
	t.Setenv("S3_PATH_STYLE", "maybe")

	cfg := FromEnv()
	assert.Equal(t, 1.0, cfg.BotRatePerSecond)
	assert.False(t, cfg.S3PathStyle)
}
