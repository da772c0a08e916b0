package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/quill-api/api"
	"github.com/beka-birhanu/quill-api/api/drafts"
	api_i "github.com/beka-birhanu/quill-api/api/i"
	"github.com/beka-birhanu/quill-api/api/identity"
	"github.com/beka-birhanu/quill-api/api/posts"
	"github.com/beka-birhanu/quill-api/config"
	"github.com/beka-birhanu/quill-api/infrastruture/cache"
	"github.com/beka-birhanu/quill-api/infrastruture/password"
	"github.com/beka-birhanu/quill-api/infrastruture/repo"
	"github.com/beka-birhanu/quill-api/infrastruture/token"
	"github.com/beka-birhanu/quill-api/logger"
	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/beka-birhanu/quill-api/service"
	"github.com/beka-birhanu/quill-api/service/authmgr"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

const (
	mongoConnectTimeout    = 10 * time.Second
	mongoDisconnectTimeout = 5 * time.Second
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return serve(ctx, cfg)
		},
	})
}

// loggers holds one colored logger per component.
type loggers struct {
	app, auth, db, cache, http logr.Logger
}

func newLoggers(verbosity int) loggers {
	logger.SetVerbosity(verbosity)
	return loggers{
		app:   logger.New("APP", config.AppLogColor, os.Stdout),
		auth:  logger.New("AUTH", config.AuthLogColor, os.Stdout),
		db:    logger.New("DB", config.DBLogColor, os.Stdout),
		cache: logger.New("CACHE", config.CacheLogColor, os.Stdout),
		http:  logger.New("HTTP", config.HTTPLogColor, os.Stdout),
	}
}

// server is the assembled process.
type server struct {
	router   *api.Router
	sizes    workerpool.Sizes
	dbPool   *service.DBPool
	authPool *service.AuthPool
	manager  authmgr.Manager[uuid.UUID]
	mongo    *mongo.Client
	log      loggers
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := newLoggers(cfg.LogVerbosity)
	gin.SetMode(cfg.GinMode)

	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		log.app.Error(err, "startup failed")
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return errors.Join(fmt.Errorf("listening on %s: %w", cfg.Addr(), err), srv.shutdown(context.Background()))
	}
	maxConns := srv.sizes.Server * cfg.HTTPConnsPerWorker
	ln = netutil.LimitListener(ln, maxConns)
	log.app.Info("accepting connections", "addr", cfg.Addr(), "maxConns", maxConns)

	if err := srv.run(ctx, ln); err != nil {
		log.app.Error(err, "server stopped")
		return err
	}
	log.app.Info("server stopped")
	return nil
}

// run serves HTTP on ln until ctx ends or the server fails, then releases the
// pools and their backends once no request can reach them any more.
func (s *server) run(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	served := make(chan struct{})

	g.Go(func() error {
		defer close(served)
		return s.router.Serve(gctx, ln)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-served:
		}
		<-served
		s.log.app.Info("draining worker pools")
		return s.shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newServer(ctx context.Context, cfg *config.Config, log loggers) (srv *server, err error) {
	srv = &server{sizes: workerpool.DefaultSizes(), log: log}
	if cfg.CPUCount > 0 {
		srv.sizes = workerpool.SizeFor(cfg.CPUCount)
	}
	log.app.Info("worker pools sized", "server", srv.sizes.Server, "db", srv.sizes.DB, "auth", srv.sizes.Auth)

	// Release whatever was built if a later step fails.
	defer func() {
		if err != nil {
			if closeErr := srv.shutdown(context.Background()); closeErr != nil {
				log.app.Error(closeErr, "releasing partially started server")
			}
			srv = nil
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	srv.mongo, err = mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI()))
	if err != nil {
		return srv, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err = srv.mongo.Ping(connectCtx, nil); err != nil {
		return srv, fmt.Errorf("pinging MongoDB: %w", err)
	}
	log.db.Info("connected to MongoDB", "database", cfg.DBName)

	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return srv, err
	}

	poolOpts := func(l logr.Logger) []workerpool.Option {
		return []workerpool.Option{
			workerpool.WithQueueSize(cfg.WorkerQueueSize),
			workerpool.WithLogger(l),
			workerpool.WithMetrics(m.Pool),
		}
	}

	srv.dbPool, err = service.NewDBPool(&service.DB{
		Users:  repo.NewUserRepo(srv.mongo, cfg.DBName, "users"),
		Posts:  repo.NewPostRepo(srv.mongo, cfg.DBName, "posts"),
		Drafts: repo.NewDraftRepo(srv.mongo, cfg.DBName, "drafts"),
		Hasher: hasher,
	}, srv.sizes.DB, poolOpts(log.db)...)
	if err != nil {
		return srv, err
	}

	tokenizer, err := token.NewJwtService[uuid.UUID](cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return srv, fmt.Errorf("building tokenizer: %w", err)
	}

	cachePoolSize := cfg.RedisPoolSize
	if cachePoolSize == 0 {
		cachePoolSize = srv.sizes.Auth
	}
	srv.manager, err = authmgr.New(ctx, authmgr.Config[uuid.UUID]{
		Tokenizer:  tokenizer,
		Expiration: cfg.JWTExpirationDuration,
		Logger:     log.auth,
		Metrics:    m.Auth,
	}, cache.Config{
		URL:            cfg.RedisServerURL,
		ConnectTimeout: cfg.RedisServerGetConnectionTimeout,
		PoolSize:       cachePoolSize,
		Prefix:         cfg.TokenCachePrefix,
		Logger:         log.cache,
		Metrics:        m.Cache,
	})
	if err != nil {
		return srv, err
	}

	srv.authPool, err = authmgr.NewPool(srv.manager, srv.sizes.Auth, poolOpts(log.auth)...)
	if err != nil {
		return srv, err
	}

	authService, err := service.NewAuth(srv.dbPool, srv.authPool)
	if err != nil {
		return srv, err
	}
	postService, err := service.NewPosts(srv.dbPool)
	if err != nil {
		return srv, err
	}
	draftService, err := service.NewDrafts(srv.dbPool)
	if err != nil {
		return srv, err
	}

	srv.router = api.NewRouter(api.Config{
		BaseURL: "/api",
		Controllers: []api_i.Controller{
			identity.NewIdentityServer(authService),
			posts.NewController(postService),
			drafts.NewController(draftService),
		},
		AuthorizationMiddleware: identity.Authorize(authService),
		Middlewares:             []gin.HandlerFunc{m.HTTP.Middleware()},
		MetricsHandler:          metrics.Handler(reg),
		Logger:                  log.http,
	})
	return srv, nil
}

// shutdown drains the auth and database chains concurrently. Each pool is
// drained before the backend its workers use is closed.
func (s *server) shutdown(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if s.authPool != nil {
			s.authPool.Close()
		}
		if s.manager != nil {
			if err := authmgr.Close(s.manager); err != nil {
				return fmt.Errorf("closing token cache: %w", err)
			}
		}
		return nil
	})
	g.Go(func() error {
		if s.dbPool != nil {
			s.dbPool.Close()
		}
		if s.mongo != nil {
			ctx, cancel := context.WithTimeout(ctx, mongoDisconnectTimeout)
			defer cancel()
			if err := s.mongo.Disconnect(ctx); err != nil {
				return fmt.Errorf("disconnecting from MongoDB: %w", err)
			}
		}
		return nil
	})
	return g.Wait()
}
