package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	grpcadapter "puzzle-rewards/internal/adapters/input/grpc"
	"puzzle-rewards/internal/adapters/input/httpops"
	"puzzle-rewards/internal/adapters/output/memory"
	"puzzle-rewards/internal/adapters/output/objectstore"
	"puzzle-rewards/internal/adapters/output/postgres"
	"puzzle-rewards/internal/adapters/output/rediscache"
	"puzzle-rewards/internal/config"
	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/core/puzzle"
	"puzzle-rewards/internal/core/service"
	dbinfra "puzzle-rewards/internal/infrastructure/db"
	"puzzle-rewards/internal/logger"
	"puzzle-rewards/internal/tracing"
	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

type App struct {
	Config     *config.Config
	Log        *zap.Logger
	GRPCServer *grpc.Server
	Listener   net.Listener
	OpsServer  *http.Server
	// DB is the Postgres pool; nil with the memory store.
	DB         dbinfra.Querier
	close      []func()
}

type persistence struct {
	repos ports.Repositories
	uow   ports.UnitOfWorkManager
	check httpops.Check
}

func Init(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.Init(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	a := &App{Config: cfg, Log: log}
	a.onClose(func() { _ = log.Sync() })

	if err := a.build(ctx); err != nil {
		log.Error("app init failed", zap.Error(err))
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, log := a.Config, a.Log

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
		SampleRatio:  cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	a.onClose(func() { _ = shutdownTracing(context.Background()) })

	store, err := a.persistence(ctx)
	if err != nil {
		return err
	}

	storage, err := a.objectStorage(ctx)
	if err != nil {
		return err
	}

	checks := map[string]httpops.Check{"store": store.check}
	var cache ports.Cache = ports.NoopCache{}
	if cfg.Redis.Addr != "" {
		rdb := rediscache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.onClose(func() { _ = rdb.Close() })
		redisCache := rediscache.New(rdb, cfg.Redis.Prefix)
		cache = redisCache
		checks["redis"] = redisCache.Ping
		log.Info("task cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	generator := puzzle.NewGenerator(storage, puzzle.Config{
		CanvasSize:    cfg.Puzzle.CanvasSize,
		MaxImageBytes: cfg.Puzzle.MaxImageBytes,
		ArtifactTTL:   cfg.Puzzle.ArtifactTTL,
		Timeout:       cfg.Puzzle.GenerationTimeout,
		Concurrency:   cfg.Puzzle.Concurrency,
	}, log)

	settings := service.Settings{
		MaxRewardValue:    cfg.Rewards.MaxValue,
		FeatureCostPerDay: cfg.Rewards.FeatureCostPerDay,
		RewardValidity:    cfg.Rewards.Validity,
		MaxSolveTime:      cfg.Puzzle.MaxSolveTime,
		CacheTTL:          cfg.Redis.CacheTTL,
	}

	taskService, err := service.NewTaskService(store.repos, store.uow, generator, storage, cache, settings, log)
	if err != nil {
		return fmt.Errorf("init task service: %w", err)
	}
	rewardService, err := service.NewRewardService(store.repos, store.uow, settings, log)
	if err != nil {
		return fmt.Errorf("init reward service: %w", err)
	}
	attemptService, err := service.NewAttemptService(store.uow, rewardService, cache, settings, log)
	if err != nil {
		return fmt.Errorf("init attempt service: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	a.Listener = listener
	a.onClose(func() { _ = listener.Close() })

	a.GRPCServer = grpc.NewServer(grpc.ChainUnaryInterceptor(tracing.UnaryServerInterceptor()))
	puzzlev1.RegisterPuzzleServiceServer(a.GRPCServer, grpcadapter.NewPuzzleServer(taskService, attemptService, rewardService, log))
	if cfg.GRPC.Reflection {
		reflection.Register(a.GRPCServer)
	}

	a.OpsServer = httpops.NewServer(cfg.OpsAddr(), httpops.NewRouter(checks, log))
	return nil
}

func (a *App) persistence(ctx context.Context) (*persistence, error) {
	cfg, log := a.Config, a.Log

	if cfg.Database.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		for _, id := range cfg.Database.MemoryCompanies {
			store.PutCompany(entities.Company{ID: id, Name: id})
		}
		log.Warn("using in-memory store, data is lost on restart", zap.Strings("companies", cfg.Database.MemoryCompanies))
		return &persistence{
			repos: store.Repositories(),
			uow:   memory.NewUnitOfWorkManager(store),
			check: func(context.Context) error { return nil },
		}, nil
	}

	isolation, err := dbinfra.ParseIsolation(cfg.Database.Isolation)
	if err != nil {
		return nil, err
	}
	pool, err := dbinfra.ConnectToDB(ctx, cfg.GetDSN(), dbinfra.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	a.onClose(pool.Close)
	a.DB = pool

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	repoFactory := func(q dbinfra.Querier) ports.Repositories {
		return postgres.NewRepositories(q, log)
	}
	return &persistence{
		repos: postgres.NewRepositories(pool, log),
		uow:   dbinfra.NewUnitOfWorkManager(pool, log, repoFactory).WithIsolation(isolation),
		check: pool.Ping,
	}, nil
}

func (a *App) objectStorage(ctx context.Context) (ports.ObjectStorage, error) {
	cfg := a.Config.Storage
	if cfg.Driver == config.StorageDriverS3 {
		s3, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			PublicBaseURL:   cfg.PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		a.Log.Info("object storage: s3", zap.String("bucket", cfg.S3Bucket))
		return s3, nil
	}
	a.Log.Info("object storage: local", zap.String("dir", cfg.LocalDir))
	return objectstore.NewLocal(cfg.LocalDir, cfg.PublicBaseURL), nil
}

func (a *App) onClose(fn func()) {
	a.close = append(a.close, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
	a.close = nil
}
