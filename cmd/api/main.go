package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/ia4pymes/chatbot-admin/internal/auth"
	"github.com/ia4pymes/chatbot-admin/internal/infra/cache"
	"github.com/ia4pymes/chatbot-admin/internal/infra/database"
	"github.com/ia4pymes/chatbot-admin/internal/infra/http/handlers"
	"github.com/ia4pymes/chatbot-admin/internal/infra/http/middleware"
	"github.com/ia4pymes/chatbot-admin/internal/infra/integration/whatsapp"
	"github.com/ia4pymes/chatbot-admin/internal/infra/mail"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
	"github.com/ia4pymes/chatbot-admin/internal/infra/storage"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Base de datos inaccesible: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatalf("❌ RabbitMQ inaccesible: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// Redis es opcional: sin él, analytics se calcula en cada petición
	var redisCache *cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache, err = cache.NewCache(addr, os.Getenv("REDIS_PASSWORD"), 0, 5*time.Minute)
		if err != nil {
			log.Printf("⚠️ Redis inaccesible, sigo sin caché: %v", err)
			redisCache = nil
		}
	}

	// S3 también: sin bucket no hay subida de documentos
	var s3Store *storage.S3Store
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		s3Store, err = storage.NewS3Store(context.Background(), bucket,
			os.Getenv("AWS_REGION"), os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"))
		if err != nil {
			log.Printf("⚠️ S3 inaccesible, sigo sin documentos: %v", err)
			s3Store = nil
		}
	}

	// 1. Repositorios
	leadRepo := database.NewLeadRepository(db)
	stageRepo := database.NewStageRepository(db)
	convRepo := database.NewConversationRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)
	docRepo := database.NewDocumentRepository(db)
	configRepo := database.NewConfigRepository(db)
	userRepo := database.NewUserRepository(db)

	// 2. Adaptadores
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if mailPort == 0 {
		mailPort = 587
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort,
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"), os.Getenv("MAIL_FROM_NAME"),
	)
	whatsappClient := whatsapp.NewClient()
	jwtManager := auth.NewJWTManager(os.Getenv("JWT_SECRET"), 24*time.Hour)

	// 3. Worker de notificaciones (consume la cola de eventos de lead)
	worker := queue.NewWorker(rabbitMQ.Ch, userRepo, mailSender, whatsappClient, os.Getenv("ALERT_WHATSAPP_TO"))
	go worker.Start(queue.QueueName)

	// 4. Casos de uso
	mutateUC := usecase.NewMutateLeadUseCase(leadRepo, stageRepo, producer)
	deleteUC := usecase.NewDeleteLeadUseCase(leadRepo, producer)
	saveStagesUC := usecase.NewSaveStageSettingsUseCase(stageRepo, leadRepo)
	loginUC := usecase.NewLoginUseCase(userRepo, jwtManager)
	digestUC := usecase.NewDailyDigestUseCase(userRepo, leadRepo, mailSender)

	// 5. Cron del resumen diario (8:00 hora del servidor)
	scheduler := cron.New()
	scheduler.AddFunc("0 8 * * *", func() {
		if err := digestUC.Execute(context.Background()); err != nil {
			log.Printf("⚠️ Resumen diario fallido: %v", err)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// 6. Handlers
	authHandler := handlers.NewAuthHandler(loginUC)
	leadHandler := handlers.NewLeadHandler(leadRepo, mutateUC, deleteUC)
	stageHandler := handlers.NewStageHandler(stageRepo, saveStagesUC)
	historyHandler := handlers.NewHistoryHandler(convRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsRepo, redisCache)
	exportHandler := handlers.NewExportHandler(leadRepo)
	configHandler := handlers.NewConfigHandler(configRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, redisCache)

	// un *S3Store nulo dentro de la interfaz no sería nil para el handler
	var uploader handlers.Uploader
	if s3Store != nil {
		uploader = s3Store
	}
	docHandler := handlers.NewDocumentHandler(docRepo, uploader)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtManager))

		r.Get("/api/leads", leadHandler.List)
		r.Post("/api/leads/update", leadHandler.Mutate)
		r.Delete("/api/leads", leadHandler.Delete)
		r.Get("/api/leads/export", exportHandler.Export)

		r.Get("/api/crm/settings", stageHandler.Get)
		r.Put("/api/crm/settings", stageHandler.Save)

		r.Get("/api/history", historyHandler.List)
		r.Get("/api/analytics", analyticsHandler.Quantitative)
		r.Get("/api/analytics/qualitative", analyticsHandler.Qualitative)

		r.Get("/api/documents", docHandler.List)
		r.Post("/api/documents/presign", docHandler.Presign)
		r.Delete("/api/documents", docHandler.Delete)

		r.Get("/api/config", configHandler.GetBotConfig)
		r.Post("/api/config", configHandler.SaveBotConfig)
		r.Get("/api/config/email", configHandler.GetEmailCredentials)
		r.Post("/api/config/email", configHandler.SaveEmailCredentials)
		r.Post("/api/config/email/test", configHandler.TestEmailCredentials)
		r.Get("/api/config/whatsapp", configHandler.GetWhatsAppCredentials)
		r.Post("/api/config/whatsapp", configHandler.SaveWhatsAppCredentials)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🔥 Gateway del panel escuchando en :%s", port)
	http.ListenAndServe(":"+port, r)
}
