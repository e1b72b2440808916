package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"market-service/internal/auth"
	"market-service/internal/db"
	"market-service/internal/handlers"
	"market-service/internal/middleware"
	"market-service/internal/observability"
	"market-service/internal/rabbitmq"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
	"market-service/internal/ws"
)

const serviceName = "market-service"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), serviceName)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "market.events"))
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode: %s", rabbitmq.PublisherMode(publisher))

	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret"))

	auditEmitter := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "audit.market"), serviceName, getEnv("ENVIRONMENT", "development"))

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	productRepo := repositories.NewProductRepo(database)
	favoriteRepo := repositories.NewFavoriteRepo(database)

	hub := ws.NewHub()

	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, productRepo, auditEmitter)
	productHandler := handlers.NewProductHandler(productRepo)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, productRepo)

	chatWS := ws.NewChatSocketHandler(hub, verifier, userRepo, chatRepo, messageRepo, notificationRepo)
	notificationWS := ws.NewNotificationSocketHandler(hub, verifier)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(verifier)

	api := router.Group("/api", authMiddleware)
	api.GET("/chats", chatHandler.ListChats)
	api.POST("/chats/start", chatHandler.StartChat)
	api.GET("/chats/:chat_id/messages", chatHandler.GetChatMessages)
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/:product_id", productHandler.GetProduct)
	api.GET("/favorites", favoriteHandler.ListFavorites)
	api.POST("/favorites/:product_id", favoriteHandler.AddFavorite)
	api.DELETE("/favorites/:product_id", favoriteHandler.RemoveFavorite)

	// socket handlers authenticate the token themselves so browser clients
	// can pass it as a query parameter
	router.GET("/ws/chats/:chat_id", chatWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	handlers.RegisterDebugRoutes(router, auditEmitter, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
