package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"marketgram/config"
	"marketgram/logger"
	"marketgram/middleware"
	"marketgram/module/conversation"
	"marketgram/service/chat"
	"marketgram/service/mgo"
	"marketgram/service/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mgo.Connect(ctx, &mgo.Config{
		URI:         cfg.Mongo.URI,
		Address:     cfg.Mongo.Address,
		Database:    cfg.Mongo.Database,
		Username:    cfg.Mongo.Username,
		Password:    cfg.Mongo.Password,
		AuthSource:  cfg.Mongo.AuthSource,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		logger.Errorf("mongo: %v", err)
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	var store storage.Store = storage.NewMongoStore(db)
	if cfg.Redis.Addr != "" {
		rdb, rerr := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if rerr != nil {
			logger.Errorf("redis: %v", rerr)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		store = storage.NewCachedStore(store, rdb, cfg.Redis.TTL)
		logger.Infof("participants cache enabled addr=%s", cfg.Redis.Addr)
	}

	relay := chat.NewServer(store, chat.Options{
		SendQueueSize:  cfg.WS.SendQueueSize,
		FanoutWorkers:  cfg.WS.FanoutWorkers,
		FanoutQueue:    cfg.WS.FanoutQueue,
		PingPeriod:     cfg.WS.PingPeriod,
		WriteWait:      cfg.WS.WriteWait,
		MaxMessageSize: cfg.WS.MaxMessageSize,
	})
	defer relay.Close()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "MarketGram API is running...")
	})
	r.GET("/ws", relay.HandleWS)

	auth := middleware.Auth(middleware.Options{
		Secret: []byte(cfg.JWT.Secret),
		Alg:    cfg.JWT.Alg,
	})
	conversation.RegisterRoutes(r, store, auth)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}
	go func() {
		logger.Infof("server is running on %s", cfg.HTTP.Addr)
		if serr := srv.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
			logger.Errorf("listen: %v", serr)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	_ = srv.Shutdown(context.Background())
}
