package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"data-hand/config"
	"data-hand/models"
	"data-hand/providers/wikipedia"
	"data-hand/services"
	"data-hand/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var tasksProcessedCounter prometheus.Counter

func init() {
	tasksProcessedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_tasks_processed_total",
			Help: "Total number of analysis tasks processed.",
		},
	)
	prometheus.MustRegister(tasksProcessedCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Optionale History-Datenbank
	var historyDB *gorm.DB
	if cfg.HistoryEnabled() {
		historyDB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			logging.Fatal("Failed to connect to history database", zap.Error(err))
		}
		logging.Info("Successfully connected to history database.")

		logging.Info("Running database auto-migration...")
		historyDB.AutoMigrate(&models.AnalysisRun{})
	} else {
		logging.Info("No history database configured, persistence disabled.")
	}

	// Setup Services
	provider := wikipedia.NewFetcher(cfg, logging)
	scraper := services.NewScrapeService(cfg, logging, provider)
	stats := services.NewStatsEngine(logging)
	charts := services.NewChartRenderer(logging)
	taskRouter := services.NewTaskRouter(logging, scraper, stats, charts)

	// Optionales S3-Chart-Archiv
	if cfg.ChartArchiveEnabled() {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		taskRouter.Archive = &s3ChartArchiver{client: s3Client, cfg: cfg}
		logging.Info("Chart archive enabled", zap.String("bucket", cfg.ChartS3Bucket))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupHealthRoutes(router)
	setupAnalysisRoutes(router, taskRouter, historyDB, logging)

	// Setup Cron: alte Analysis-Runs aufräumen
	if historyDB != nil {
		cronScheduler := cron.New()
		cronScheduler.AddFunc(cfg.CronSchedule, func() {
			cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
			res := historyDB.Where("created_at < ?", cutoff).Delete(&models.AnalysisRun{})
			if res.Error != nil {
				logging.Error("History pruning failed", zap.Error(res.Error))
			} else {
				logging.Info("History pruned", zap.Int64("deleted_runs", res.RowsAffected))
			}
		})
		cronScheduler.Start()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// s3ChartArchiver implementiert services.ChartArchiver über das S3-Archiv.
type s3ChartArchiver struct {
	client *s3.Client
	cfg    *config.Config
}

func (a *s3ChartArchiver) ArchiveChart(ctx context.Context, dataURI string) (string, error) {
	key := fmt.Sprintf("charts/%s.png", time.Now().UTC().Format("20060102T150405.000000000"))
	return storage.UploadChart(ctx, a.client, a.cfg.ChartS3Bucket, key, dataURI, a.cfg)
}

func setupHealthRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Data Analyst Agent is running", "status": "healthy"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"services": []string{"task_router", "web_scraper", "stats_engine", "chart_renderer"},
			"version":  "1.0.0",
		})
	})
}

// setupAnalysisRoutes konfiguriert den zentralen Analyse-Endpunkt.
func setupAnalysisRoutes(router *gin.Engine, taskRouter *services.TaskRouter, historyDB *gorm.DB, log *zap.Logger) {
	router.POST("/api/", func(c *gin.Context) {
		content := readTaskContent(c)
		if strings.TrimSpace(content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "No data provided"})
			return
		}

		// Kein valides JSON wird als reine Aufgabenbeschreibung gewrappt.
		var task models.Task
		if err := json.Unmarshal([]byte(content), &task); err != nil {
			task = models.Task{Task: content}
		}

		log.Info("Processing task",
			zap.Int("task_length", len(task.Task)),
			zap.Int("questions", len(task.Questions)))

		start := time.Now()
		results := taskRouter.Route(c.Request.Context(), task)
		duration := time.Since(start)
		tasksProcessedCounter.Inc()

		if historyDB != nil {
			saveAnalysisRun(historyDB, taskRouter, task, results, duration, log)
		}

		c.JSON(http.StatusOK, results)
	})
}

// readTaskContent liest den Task-Inhalt aus Datei-Upload, Formularfeld oder
// rohem Body, in dieser Reihenfolge.
func readTaskContent(c *gin.Context) string {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err == nil {
			defer f.Close()
			if data, err := io.ReadAll(f); err == nil {
				return string(data)
			}
		}
	}

	if data := c.PostForm("data"); data != "" {
		return data
	}

	raw, err := c.GetRawData()
	if err != nil {
		return ""
	}
	return string(raw)
}

// saveAnalysisRun protokolliert einen verarbeiteten Request in der
// History-Datenbank. Fehler werden nur geloggt, die Antwort ist davon
// unabhängig.
func saveAnalysisRun(db *gorm.DB, taskRouter *services.TaskRouter, task models.Task, results []any, duration time.Duration, log *zap.Logger) {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		log.Warn("Failed to encode results for history", zap.Error(err))
		resultsJSON = []byte("[]")
	}

	run := models.AnalysisRun{
		TaskText:      task.Task,
		Domain:        string(taskRouter.Classify(task)),
		QuestionCount: len(task.Questions),
		ResultsJSON:   string(resultsJSON),
		DurationMS:    duration.Milliseconds(),
	}
	if err := db.Create(&run).Error; err != nil {
		log.Warn("Failed to save analysis run", zap.Error(err))
	}
}
