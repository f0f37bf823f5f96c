package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"metaverse-backend/internal/auth"
	"metaverse-backend/internal/cache"
	"metaverse-backend/internal/config"
	"metaverse-backend/internal/handler"
	"metaverse-backend/internal/repository"
	"metaverse-backend/internal/service"
)

// Server Fiber 서버 래퍼
type Server struct {
	app            *fiber.App
	cfg            *config.Config
	db             *gorm.DB
	spaceHandler   *handler.SpaceHandler
	userHandler    *handler.UserHandler
	adminHandler   *handler.AdminHandler
	catalogHandler *handler.CatalogHandler
	healthHandler  *handler.HealthHandler
	jwtManager     *auth.JWTManager
	spaceCache     *cache.SpaceCache
}

// New 새 서버 인스턴스 생성
func New(cfg *config.Config, db *gorm.DB) *Server {
	app := fiber.New(fiber.Config{
		AppName:       "Metaverse API",
		ServerHeader:  "Fiber",
		StrictRouting: false,
		CaseSensitive: true,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		BodyLimit:     1 * 1024 * 1024, // 1MB
	})

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// 캐시 초기화 (선택적)
	var spaceCache *cache.SpaceCache
	if cfg.Redis.Addr != "" {
		var err error
		spaceCache, err = cache.NewSpaceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
		if err != nil {
			log.Printf("⚠️ Redis cache initialization failed: %v (space detail caching disabled)", err)
			spaceCache = nil
		} else {
			log.Printf("✅ Redis cache initialized (addr: %s)", cfg.Redis.Addr)
		}
	} else {
		log.Println("ℹ️ Redis not configured (space detail caching disabled)")
	}

	spaceRepo := repository.NewGormSpaceRepository(db)
	catalogRepo := repository.NewGormCatalogRepository(db)
	spaceService := service.NewSpaceService(spaceRepo, catalogRepo)

	return &Server{
		app:            app,
		cfg:            cfg,
		db:             db,
		spaceHandler:   handler.NewSpaceHandler(spaceService, spaceCache),
		userHandler:    handler.NewUserHandler(db, jwtManager),
		adminHandler:   handler.NewAdminHandler(db),
		catalogHandler: handler.NewCatalogHandler(db),
		healthHandler:  handler.NewHealthHandler(db, spaceCache),
		jwtManager:     jwtManager,
		spaceCache:     spaceCache,
	}
}

// SetupMiddleware 미들웨어 설정
func (s *Server) SetupMiddleware() {
	// 패닉 복구
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// 로깅
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORS.AllowOrigins,
		AllowHeaders: s.cfg.CORS.AllowHeaders,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
}

// SetupRoutes 라우트 설정
func (s *Server) SetupRoutes() {
	// 헬스체크 엔드포인트
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate Limiter 설정 (인증 엔드포인트용 - Brute Force 방지)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
			})
		},
	})

	api := s.app.Group("/api/v1")

	// 공용 카탈로그
	api.Get("/elements", s.catalogHandler.GetElements)
	api.Get("/avatars", s.catalogHandler.GetAvatars)

	// User 라우트
	userGroup := api.Group("/user")
	userGroup.Post("/signup", authLimiter, s.userHandler.Signup)
	userGroup.Post("/signin", authLimiter, s.userHandler.Signin)
	userGroup.Post("/metadata", auth.UserMiddleware(s.jwtManager), s.userHandler.UpdateMetadata)
	userGroup.Get("/metadata/bulk", s.userHandler.GetMetadataBulk)

	// Space 라우트 (인증 필요). 리터럴 경로를 :spaceId보다 먼저 등록한다.
	spaceGroup := api.Group("/space", auth.UserMiddleware(s.jwtManager))
	spaceGroup.Get("/all", s.spaceHandler.GetMySpaces)
	spaceGroup.Post("/element", s.spaceHandler.AddElement)
	spaceGroup.Delete("/element", s.spaceHandler.DeleteElement)
	spaceGroup.Post("/", s.spaceHandler.CreateSpace)
	spaceGroup.Get("/:spaceId", s.spaceHandler.GetSpace)
	spaceGroup.Delete("/:spaceId", s.spaceHandler.DeleteSpace)

	// Admin 라우트 (관리자 전용)
	adminGroup := api.Group("/admin", auth.AdminMiddleware(s.jwtManager))
	adminGroup.Post("/element", s.adminHandler.CreateElement)
	adminGroup.Put("/element/:elementId", s.adminHandler.UpdateElement)
	adminGroup.Post("/avatar", s.adminHandler.CreateAvatar)
	adminGroup.Post("/map", s.adminHandler.CreateMap)
}

// Start 서버 시작 (Graceful Shutdown 지원)
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if s.spaceCache != nil {
			s.spaceCache.Close()
		}
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Metaverse API starting on %s", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown 서버 종료
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
