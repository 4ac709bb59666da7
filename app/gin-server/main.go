package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	appcfg "github.com/sariqm/brandmate/config"
	"github.com/sariqm/brandmate/internal/api/handlers"
	"github.com/sariqm/brandmate/internal/api/middleware"
	"github.com/sariqm/brandmate/internal/api/routes"
	"github.com/sariqm/brandmate/internal/cache"
	"github.com/sariqm/brandmate/internal/logger"
	"github.com/sariqm/brandmate/internal/pipeline"
	"github.com/sariqm/brandmate/internal/providers/ai"
	"github.com/sariqm/brandmate/internal/rag"
	mongorepo "github.com/sariqm/brandmate/internal/repositories/mongo"
	"github.com/sariqm/brandmate/internal/services"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	mongoClient, err := appcfg.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()
	log.Info("MongoDB connected")

	db := mongoClient.Database(cfg.MongoDB)
	if err := appcfg.EnsureMongoIndexes(ctx, db); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	messages := mongorepo.NewMessageRepo(db)
	users := mongorepo.NewUserRepo(db)

	azure := ai.NewAzureOpenAI(cfg.Azure, cfg.RemoteTimeout)

	var model ai.Completer = azure
	if cfg.AIProvider == "vertex" {
		vertex, err := ai.NewVertexGemini(ctx, cfg.Vertex.ProjectID, cfg.Vertex.Location, cfg.Vertex.Model)
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		defer func() { _ = vertex.Close() }()
		model = vertex
	}

	var index rag.VectorDB
	switch cfg.VectorBackend {
	case "pgvector":
		pg, err := appcfg.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			log.Fatalf("PostgreSQL init error: %v", err)
		}
		if err := rag.AutoMigrate(pg); err != nil {
			log.Fatalf("PostgreSQL migrate error: %v", err)
		}
		log.Info("PostgreSQL connected")
		index = rag.NewPgVectorDB(pg, azure, cfg.Pinecone.TopK, log)
	default:
		index = rag.NewPineconeDB(rag.PineconeConfig{
			BaseURL: cfg.Pinecone.BaseURL,
			APIKey:  cfg.Pinecone.APIKey,
			TopK:    cfg.Pinecone.TopK,
			Timeout: cfg.RemoteTimeout,
		}, azure, log)
	}

	var lookup cache.UserLookup
	if cfg.RedisAddr != "" {
		rdb, err := appcfg.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Redis init error: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		log.Info("Redis connected")
		lookup = cache.NewUserCache(rdb, 5*time.Minute)
	}

	userSvc := services.NewUserService(users, lookup, []byte(cfg.JWTSecret))
	engine := pipeline.NewEngine(model, index, cfg.Namespace, log)
	messageSvc := services.NewMessageService(messages, users, engine, log)
	vectorSvc := services.NewVectorService(index, cfg.Namespace, log)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		User:     handlers.NewUserHandler(userSvc),
		Message:  handlers.NewMessageHandler(messageSvc),
		Document: handlers.NewDocumentHandler(vectorSvc),
		Users:    userSvc,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
