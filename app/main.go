package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Markelych32/blog-platform/internal/categoryservice"
	"github.com/Markelych32/blog-platform/internal/common"
	"github.com/Markelych32/blog-platform/internal/mailservice"
	"github.com/Markelych32/blog-platform/internal/postservice"
	"github.com/Markelych32/blog-platform/internal/tagservice"
	"github.com/Markelych32/blog-platform/internal/userservice"
)

type application struct {
	config          *Config
	logger          *slog.Logger
	userService     *userservice.UserService
	categoryService *categoryservice.CategoryService
	tagService      *tagservice.TagService
	postService     *postservice.PostService
	mailService     *mailservice.MailService
	broker          *common.MessageBroker
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	// Setup the exchange, queue, and binding key
	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	clock := common.SystemClock{}

	userService, err := userservice.NewUserService(db, broker, []byte(cfg.JWTSecret), clock)
	if err != nil {
		logger.Error("failed to create the user service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	categoryService := categoryservice.NewCategoryService(db, cache)
	tagService := tagservice.NewTagService(db, cache)

	// Initialize the services
	app := &application{
		config:          cfg,
		logger:          logger,
		userService:     userService,
		categoryService: categoryService,
		tagService:      tagService,
		postService:     postservice.NewPostService(db, cache, categoryService, tagService, userService, clock),
		broker:          broker,
		mailService:     mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
	}

	// Initialize the consumer
	go app.mailService.SendWelcomeEmail()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
