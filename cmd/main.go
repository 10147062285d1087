package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jajuok/agripro-sub000/internal/config"
	"github.com/jajuok/agripro-sub000/internal/database/postgres"
	"github.com/jajuok/agripro-sub000/internal/database/redis"
	"github.com/jajuok/agripro-sub000/internal/event"
	"github.com/jajuok/agripro-sub000/internal/gateway"
	"github.com/jajuok/agripro-sub000/internal/handlers"
	"github.com/jajuok/agripro-sub000/internal/repository"
	"github.com/jajuok/agripro-sub000/internal/services"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
)

// creditCacheClient unwraps the optional Redis connection for the credit
// cache. A nil client disables caching without disabling assessments.
func creditCacheClient(c *redis.Client) *goredis.Client {
	if c == nil {
		return nil
	}
	return c.GetClient()
}

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/agripro", "log", "eligibility_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(
		cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		// The credit cache degrades gracefully without Redis; every check
		// just goes to the bureau.
		slog.Warn("Redis unavailable, running without credit cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var notifier event.Notifier
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, status notifications disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		notifier = event.NewNotificationPublisher(rabbitConn)
	}

	schemeRepo := repository.NewSchemeRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	reviewRepo := repository.NewReviewQueueRepository(db)

	creditGateway := gateway.NewCreditBureauClient(cfg.CreditCfg)
	profileGateway := gateway.NewProfileClient(cfg.ProfileCfg)

	creditService := services.NewCreditService(
		creditGateway, creditCacheClient(redisClient), cfg.CreditCfg.FallbackEnabled)
	waitlistService := services.NewWaitlistService(waitlistRepo, schemeRepo)
	reviewService := services.NewReviewQueueService(reviewRepo)
	schemeService := services.NewSchemeService(schemeRepo, ruleRepo)
	eligibilityService := services.NewEligibilityService(
		schemeRepo, ruleRepo, assessmentRepo,
		services.NewRulesEngine(), services.NewRiskEngine(),
		creditService, waitlistService, reviewService,
		profileGateway, notifier,
	)

	app := fiber.New()

	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Eligibility service is healthy")
	})

	handlers.NewSchemeHandler(schemeService).Register(app)
	handlers.NewRuleHandler(schemeService).Register(app)
	handlers.NewAssessmentHandler(eligibilityService).Register(app)
	handlers.NewWaitlistHandler(waitlistService).Register(app)
	handlers.NewReviewQueueHandler(reviewService).Register(app)

	slog.Info("Eligibility service starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
