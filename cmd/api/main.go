package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"net/smtp"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quillboard/quill-backend/internal/config"
	"github.com/quillboard/quill-backend/internal/handler"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/migration"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/quillboard/quill-backend/internal/routes"
	"github.com/quillboard/quill-backend/internal/service"
	pkgcache "github.com/quillboard/quill-backend/pkg/cache"
	pkglogger "github.com/quillboard/quill-backend/pkg/logger"
	"github.com/quillboard/quill-backend/pkg/mailer"
	pkgredis "github.com/quillboard/quill-backend/pkg/redis"
	"github.com/quillboard/quill-backend/pkg/token"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	logger := pkglogger.GetLogger()
	logger.Info().Str("env", env).Strs("env_files", dotenvFiles).Msg("starting")

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// Repositories
	txr := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	markRepo := repository.NewMarkRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	socialRepo := repository.NewSocialRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Mail transport. Outside prod we log instead of sending.
	var mail mailer.Mailer
	if env == "production" && cfg.Mail.SMTPAddr != "" {
		var auth smtp.Auth
		if user := os.Getenv("SMTP_USER"); user != "" {
			host, _, splitErr := net.SplitHostPort(cfg.Mail.SMTPAddr)
			if splitErr != nil {
				log.Fatalf("Invalid smtp_addr: %v", splitErr)
			}
			auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
		}
		mail = mailer.NewSMTP(cfg.Mail.SMTPAddr, cfg.Mail.From, auth)
	} else {
		mail = mailer.NewLog(logger)
	}

	verifier := token.NewManager(cfg.Auth.Secret, cfg.Auth.VerifyTTL)
	providerClient := service.NewProviderClient(cfg.Social)

	// Services
	activitySvc := service.NewActivityService(historyRepo)
	postSvc := service.NewPostService(txr, postRepo, markRepo, historyRepo, tagRepo, userRepo, versionRepo, activitySvc, cacheService)
	commentSvc := service.NewCommentService(txr, commentRepo, postRepo, userRepo, versionRepo, activitySvc, mail, cacheService)
	voteSvc := service.NewVoteService(txr, postRepo, markRepo, activitySvc, service.VotePolicy(cfg.Vote.Policy), cacheService)
	tagSvc := service.NewTagService(tagRepo)
	userSvc := service.NewUserService(userRepo, postRepo)
	socialSvc := service.NewSocialService(txr, userRepo, socialRepo, tokenRepo, providerClient, verifier, mail, cfg.Mail.BaseURL)

	// Handlers
	postHandler := handler.NewPostHandler(postSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	voteHandler := handler.NewVoteHandler(voteSvc)
	tagHandler := handler.NewTagHandler(tagSvc)
	authHandler := handler.NewAuthHandler(socialSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	allowOrigins := cfg.CORS.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if cacheService != nil {
			if err := cacheService.Ping(c.Request.Context()); err != nil {
				status["cache"] = "down"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	routes.Setup(router, postHandler, commentHandler, voteHandler, tagHandler, authHandler, userHandler, tokenRepo)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
