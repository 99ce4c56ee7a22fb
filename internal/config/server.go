package config

import (
	"SupportDesk/database/postgres"
	dialogueHandler "SupportDesk/internal/api/dialogue/handler"
	dialogueRepository "SupportDesk/internal/api/dialogue/repository"
	dialogueService "SupportDesk/internal/api/dialogue/service"
	"SupportDesk/internal/middleware"
	"SupportDesk/pkg/classifier"
	redisPkg "SupportDesk/pkg/redis"
	"SupportDesk/pkg/s3"
	"SupportDesk/pkg/sheets"
	"SupportDesk/pkg/similarity"
	"SupportDesk/pkg/smtp"
	"SupportDesk/pkg/utils"
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	sessionStore redisPkg.ISessionStore
	smtpMailer   smtp.ItfSmtp
	s3Client     s3.ItfS3
	sheetsClient sheets.ItfSheets
	models       *classifier.Models
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.models == nil {
		return nil, fmt.Errorf("classifier models are required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithSessionStore() ServerOption {
	return func(s *Server) error {
		s.sessionStore = redisPkg.New()
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithSheetsClient mirrors submissions into a spreadsheet. It is optional:
// without credentials the Postgres sink runs alone.
func WithSheetsClient() ServerOption {
	return func(s *Server) error {
		if os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID") == "" {
			if s.log != nil {
				s.log.Info("Google Sheets mirroring disabled, no spreadsheet configured")
			}
			return nil
		}

		client, err := sheets.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize Sheets client: %v", err)
			}
			return fmt.Errorf("failed to create Sheets client: %w", err)
		}
		s.sheetsClient = client
		return nil
	}
}

func WithModels() ServerOption {
	return func(s *Server) error {
		path := os.Getenv("MODEL_ARTIFACT_PATH")
		if path == "" {
			path = "./storage/models/intent_artifact.json"
		}

		models, err := classifier.LoadArtifact(path)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to load classifier artifact: %v", err)
			}
			return fmt.Errorf("failed to load classifier artifact: %w", err)
		}
		s.models = models
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	dialogueRepo := dialogueRepository.New(s.db, s.log)

	var sink dialogueService.SubmissionSink = dialogueService.NewRepositorySink(dialogueRepo)
	if s.sheetsClient != nil {
		sink = dialogueService.NewFanoutSink(sink, s.sheetsClient)
	}

	index := similarity.NewIndex(s.models.Vectorizer, s.models.HistoryTexts)

	dialogueServices := dialogueService.NewDialogueService(
		s.log,
		dialogueRepo,
		s.sessionStore,
		sink,
		s.models,
		index,
		s.smtpMailer,
		s.s3Client,
		s.utils,
		dialogueService.LoadConfig(),
	)
	dialogueHandlers := dialogueHandler.New(s.log, s.validator, s.middleware, dialogueServices)

	if err := dialogueServices.EnsureDefaultMappings(context.Background()); err != nil {
		s.log.Warnf("Failed to seed default intent mappings: %v", err)
	}

	s.setupHealthCheck()
	s.handlers = append(s.handlers, dialogueHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
