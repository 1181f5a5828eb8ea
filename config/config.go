package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`

	// Quelle für die Film-Tabellen
	FilmsURL     string        `envconfig:"FILMS_URL" default:"https://en.wikipedia.org/wiki/List_of_highest-grossing_films"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxRecords   int           `envconfig:"MAX_RECORDS" default:"50"`

	// Optionale History-Datenbank; leerer Host deaktiviert die Persistenz.
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"datahand"`

	// Aufbewahrung und Zeitplan für das Aufräumen alter Analysis-Runs
	CronSchedule  string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`
	RetentionDays int    `envconfig:"RETENTION_DAYS" default:"30"`

	// Optionales S3-Archiv für gerenderte Charts; leerer Key deaktiviert es.
	ChartS3Key    string `envconfig:"CHART_S3_KEY"`
	ChartS3Secret string `envconfig:"CHART_S3_SECRET"`
	ChartS3URL    string `envconfig:"CHART_S3_URL"`
	ChartS3Region string `envconfig:"CHART_S3_REGION"`
	ChartS3Bucket string `envconfig:"CHART_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// HistoryEnabled meldet, ob eine History-Datenbank konfiguriert ist.
func (c *Config) HistoryEnabled() bool {
	return c.DBHost != ""
}

// ChartArchiveEnabled meldet, ob das S3-Chart-Archiv konfiguriert ist.
func (c *Config) ChartArchiveEnabled() bool {
	return c.ChartS3Key != "" && c.ChartS3URL != "" && c.ChartS3Bucket != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
