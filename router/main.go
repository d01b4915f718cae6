package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klatt42/gifted-tudor/database"
	"github.com/klatt42/gifted-tudor/handlers"
	auth_handlers "github.com/klatt42/gifted-tudor/handlers/auth"
	curriculum_handlers "github.com/klatt42/gifted-tudor/handlers/curriculum"
	family_handlers "github.com/klatt42/gifted-tudor/handlers/family"
	student_handlers "github.com/klatt42/gifted-tudor/handlers/student"
	tutor_handlers "github.com/klatt42/gifted-tudor/handlers/tutor"
	"github.com/klatt42/gifted-tudor/services/curriculum"
	"github.com/klatt42/gifted-tudor/services/gamification"
	"github.com/klatt42/gifted-tudor/services/llm"
	"github.com/klatt42/gifted-tudor/services/tutor"
	"github.com/klatt42/gifted-tudor/utils"
	"github.com/klatt42/gifted-tudor/utils/auth"
	"github.com/klatt42/gifted-tudor/utils/cache"
	"github.com/klatt42/gifted-tudor/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "gifted-tudor-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection and profile caching
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and caching will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize auth handler with brute force protection
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	// Generation backend. The server boots without credentials; generation
	// endpoints answer 503 until ANTHROPIC_API_KEY is set.
	llmClient := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	if !llmClient.Configured() {
		log.Println("Warning: ANTHROPIC_API_KEY is not set. Curriculum generation and tutor chat are disabled.")
	}

	curriculumModel := os.Getenv("CURRICULUM_MODEL")
	if curriculumModel == "" {
		curriculumModel = "claude-sonnet-4-20250514"
	}
	tutorModel := os.Getenv("TUTOR_MODEL")
	if tutorModel == "" {
		tutorModel = curriculumModel
	}

	// Domain services
	gamificationService := gamification.NewService(db)
	curriculumService := curriculum.NewService(db, llmClient, curriculumModel)
	tutorService := tutor.NewService(db, llmClient, tutorModel)

	// Domain handlers
	familyHandler := family_handlers.NewFamilyHandler(db)
	studentHandler := student_handlers.NewStudentHandler(db, gamificationService, redisCache)
	curriculumHandler := curriculum_handlers.NewCurriculumHandler(db, curriculumService)
	tutorHandler := tutor_handlers.NewTutorHandler(db, tutorService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Family routes (protected)
	api.Post("/setup", authMiddleware.Required(), familyHandler.Setup)
	api.Get("/family", authMiddleware.Required(), familyHandler.GetFamily)

	// Student roster and gamification (protected, family scoped)
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/", studentHandler.ListStudents)
	students.Post("/", studentHandler.CreateStudent)
	students.Get("/:id", studentHandler.GetStudent)
	students.Patch("/:id", studentHandler.UpdateStudent)
	students.Delete("/:id", studentHandler.DeleteStudent)
	students.Post("/:id/xp", studentHandler.AddXP)
	students.Post("/:id/activity", studentHandler.RecordActivity)

	// Curriculum generation and saved lessons (protected)
	curriculumGroup := api.Group("/curriculum", authMiddleware.Required())
	curriculumGroup.Post("/generate", curriculumHandler.Generate)

	lessons := api.Group("/lessons", authMiddleware.Required())
	lessons.Get("/", curriculumHandler.ListLessons)
	lessons.Get("/:id", curriculumHandler.GetLesson)

	// Tutor chat (protected). POST streams NDJSON; GET serves history.
	tutorGroup := api.Group("/tutor", authMiddleware.Required())
	tutorGroup.Post("/chat", tutorHandler.Chat)
	tutorGroup.Get("/chat", tutorHandler.History)
}
