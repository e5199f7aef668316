package bootstrap

import (
	"context"
	"log"

	"healthlink-be/internal/config"
	"healthlink-be/internal/controller"
	"healthlink-be/internal/handler"
	"healthlink-be/internal/pkg/logger"
	"healthlink-be/internal/repository/memory"
	"healthlink-be/internal/repository/unitofwork"
	"healthlink-be/internal/service"
	"healthlink-be/internal/websocket"

	pktNats "healthlink-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	DeliveryService service.IDeliveryService

	// WebSockets
	ChatWsHandler *handler.ChatWsHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	directoryCache := memory.NewDirectoryCache()
	userDirectory := service.NewUserDirectory(uowFactory, directoryCache)

	publisherService := service.NewPublisherService(cfg.Chat.DeliveryTopic, pubSub)
	deliveryService := service.NewDeliveryService(pubSub, cfg.Chat.DeliveryTopic, wsHub, wsLogger)

	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret)
	chatService := service.NewChatService(
		uowFactory,
		publisherService,
		natsPub,
		userDirectory,
		sysLogger,
		cfg.Chat.MaxAttachmentBytes,
	)

	// Handler
	chatWsHandler := handler.NewChatWsHandler(wsHub, chatService, cfg.App.JwtSecret, wsLogger)

	// 4. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService),

		DeliveryService: deliveryService,

		ChatWsHandler: chatWsHandler,
		WebSocketHub:  wsHub,
	}
}
