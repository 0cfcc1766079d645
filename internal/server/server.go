// Package server wires the CRM together: database, GraphQL schema, jobs,
// queue and scheduler, and the HTTP and gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gql "github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-crm/app/jobs"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/app/routes"
	"github.com/shashiranjanraj/kashvi-crm/app/schema"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
	"github.com/shashiranjanraj/kashvi-crm/config"
	_ "github.com/shashiranjanraj/kashvi-crm/database/migrations"
	"github.com/shashiranjanraj/kashvi-crm/pkg/cache"
	"github.com/shashiranjanraj/kashvi-crm/pkg/database"
	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	grpcserver "github.com/shashiranjanraj/kashvi-crm/pkg/grpc"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/mail"
	"github.com/shashiranjanraj/kashvi-crm/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-crm/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-crm/pkg/migration"
	"github.com/shashiranjanraj/kashvi-crm/pkg/queue"
	"github.com/shashiranjanraj/kashvi-crm/pkg/reqid"
	"github.com/shashiranjanraj/kashvi-crm/pkg/router"
	"github.com/shashiranjanraj/kashvi-crm/pkg/schedule"
	"github.com/shashiranjanraj/kashvi-crm/pkg/storage"
	"github.com/shashiranjanraj/kashvi-crm/pkg/workerpool"
)

const shutdownTimeout = 15 * time.Second

// App holds the booted components. Build it with Boot and release it with
// Close.
type App struct {
	DB        *gorm.DB
	CRM       *services.CRM
	Schema    gql.Schema
	Local     graphql.Executor
	Remote    graphql.Executor
	Queue     *queue.Manager
	Scheduler *schedule.Scheduler
	Jobs      []jobs.Job

	pool        *workerpool.Pool
	redisQueue  *queue.RedisDriver
	closeLogger func()
}

// Boot loads config and opens every backing service. Redis and S3 are
// optional: failures are logged and the app carries on without them.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}
	a := &App{closeLogger: logger.Setup()}

	if err := database.Connect(); err != nil {
		a.closeLogger()
		return nil, err
	}
	a.DB = database.DB

	if config.GetBool("AUTO_MIGRATE", true) {
		if err := migration.New(a.DB).Run(); err != nil && !errors.Is(err, migration.ErrNoMigrations) {
			a.Close()
			return nil, fmt.Errorf("server: migrate: %w", err)
		}
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("server: redis unavailable, cache disabled", "error", err)
	}
	storage.Connect(ctx)

	a.CRM = services.NewCRM(repositories.NewGormStore(a.DB))
	s, err := schema.New(a.CRM, config.GraphQLMaxPage())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("server: build schema: %w", err)
	}
	a.Schema = s
	a.Local = graphql.NewLocalClient(s)
	if url := config.GraphQLURL(); url != "" {
		a.Remote = graphql.NewRemoteClient(url, graphql.WithToken(config.Get("GRAPHQL_TOKEN", "")))
	}

	if err := a.bootQueue(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.bootScheduler(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) bootQueue() error {
	var driver queue.Driver
	switch config.QueueDriver() {
	case "redis":
		if !cache.Available() {
			return errors.New("server: QUEUE_DRIVER=redis needs a reachable REDIS_ADDR")
		}
		a.redisQueue = queue.NewRedisDriver(cache.RDB)
		driver = a.redisQueue
	case "memory", "":
		driver = queue.NewMemoryDriver()
	default:
		return fmt.Errorf("server: unsupported QUEUE_DRIVER %q", config.QueueDriver())
	}

	store, err := queue.NewGormFailedStore(a.DB)
	if err != nil {
		return fmt.Errorf("server: failed-job store: %w", err)
	}
	a.Queue = queue.New(driver, queue.WithFailedStore(store))
	jobs.RegisterMail(a.Queue, mail.DefaultSMTP())
	return nil
}

func (a *App) bootScheduler() error {
	deps := jobs.Deps{Local: a.Local, Remote: a.Remote, Queue: a.Queue}
	if d, err := storage.Default(); err == nil {
		deps.Disk = d
	} else {
		logger.Warn("server: report archive disabled", "error", err)
	}

	a.Jobs = jobs.FromConfig(deps)
	a.pool = workerpool.New(config.GetInt("SCHEDULE_WORKERS", 4))
	a.Scheduler = schedule.New(a.pool)
	return jobs.Register(a.Scheduler, a.Jobs...)
}

// Job returns the job called name.
func (a *App) Job(name string) (jobs.Job, bool) {
	for _, j := range a.Jobs {
		if j.Name() == name {
			return j, true
		}
	}
	return nil, false
}

// Handler builds the HTTP handler with the full middleware stack.
func (a *App) Handler(limiter *middleware.RateLimiter) http.Handler {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}
	routes.Register(r, routes.Deps{Schema: a.Schema, DB: a.DB, RequireAuth: config.APIAuth()})
	return r.Handler()
}

// Work runs n queue workers until ctx ends. With the redis driver it also
// promotes delayed jobs.
func (a *App) Work(ctx context.Context, n int) {
	if a.redisQueue != nil {
		go a.redisQueue.Promote(ctx)
	}
	a.Queue.Work(ctx, n)
}

// Close releases the pool, cache, database and log sink.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if err := cache.Close(); err != nil {
		logger.Warn("server: close redis", "error", err)
	}
	if err := database.Close(a.DB); err != nil {
		logger.Warn("server: close database", "error", err)
	}
	if a.closeLogger != nil {
		a.closeLogger()
	}
}

// Start boots the app and serves HTTP, gRPC, the scheduler and queue workers
// until SIGINT or SIGTERM, then drains them.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	limiter := middleware.NewRateLimiter(config.GetInt("RATE_LIMIT_PER_MINUTE", 120), time.Minute)
	go limiter.Evict(ctx)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Handler(limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, err := grpcserver.Start(":"+config.GRPCPort(), func(context.Context) error {
		return database.Ping(a.DB)
	})
	if err != nil {
		return err
	}

	a.Scheduler.Start(ctx)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		a.Work(ctx, config.GetInt("QUEUE_WORKERS", 2))
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server: http listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("server: shutting down")
	case err = <-serveErr:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("server: http shutdown", "error", serr)
	}
	grpcSrv.Stop(shutdownCtx)
	a.Scheduler.Stop()
	<-workersDone

	return err
}
