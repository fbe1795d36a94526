package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"sacred_computing/internal/config"
	"sacred_computing/internal/packet"
	"sacred_computing/internal/repository/archive"
	"sacred_computing/internal/repository/healingcode"
	"sacred_computing/internal/repository/user"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/service/hub"
	redisSvc "sacred_computing/internal/service/redis"
	"sacred_computing/internal/service/server"
	"sacred_computing/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the broadcast hub and HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := initMongo(cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.Mongo.Database)

	archiveRepo := archive.NewArchiveRepo(db)
	codeRepo := healingcode.NewHealingCodeRepo(db)
	userRepo := user.NewUserRepo(db)

	if err := codeRepo.Seed(ctx); err != nil {
		log.Warn("seed healing codes failed", zap.Error(err))
	}

	var history *hub.History
	if cfg.History.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		history = hub.NewHistory(redisSvc.NewRedis(rdb), cfg.History.Depth)
	}

	seq := packet.NewSequence()
	codec := packet.NewCodec(seq, cfg.Sacred.SourceDevice)
	engine := sacred.NewEngine()
	h := hub.New(codec, history)

	srv := server.NewHttpServer(
		cfg.Server.Addr,
		cfg.Server.PacingDelay.Std(),
		h,
		engine,
		archiveRepo,
		codeRepo,
		userRepo,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	log.Info("sacred computing platform started", zap.String("addr", cfg.Server.Addr))
	return g.Wait()
}

func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, client.Ping(ctx, nil)
}
