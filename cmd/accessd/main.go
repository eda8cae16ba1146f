package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/avetch/accesskit/api"
	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/config"
	"github.com/avetch/accesskit/pkg/httpserver"
	"github.com/avetch/accesskit/pkg/logger"
	"github.com/avetch/accesskit/pkg/pg"
	"github.com/avetch/accesskit/pkg/ratelimit"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/redis"
	"github.com/avetch/accesskit/pkg/requestid"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/tenant"
	"github.com/avetch/accesskit/pkg/txn"
	"github.com/avetch/accesskit/pkg/user"
	"github.com/avetch/accesskit/storage/postgres"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"accessd"`

	// RolesFile optionally overrides the built-in role catalog with a YAML
	// file. Reserved roles must still be present.
	RolesFile string `env:"ROLES_FILE"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@accessd.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"change-me"`

	TenantCacheEnabled bool          `env:"TENANT_CACHE_ENABLED" envDefault:"false"`
	TenantCacheTTL     time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	// RateLimit caps requests per client IP per window; 0 disables it.
	RateLimit       int           `env:"RATE_LIMIT" envDefault:"0"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("accessd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var (
		appCfg  appConfig
		httpCfg httpserver.Config
		pgCfg   pg.Config
	)
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	if err := config.Load(&pgCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Service),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	// Stores.
	var tenants tenant.Store = postgres.NewTenantStore(pool)
	resources := postgres.NewResourceStore(pool)
	bindings := postgres.NewBindingStore(pool)
	users := postgres.NewUserStore(pool)
	roleSource := postgres.NewRoleSource(pool)
	auditStorage := postgres.NewAuditStorage(pool)
	runner := postgres.NewTxRunner(pool)

	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}

	if appCfg.TenantCacheEnabled {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		tenants = tenant.NewCachingStore(tenants, tenant.NewRedisCache(client, appCfg.TenantCacheTTL))
		healthchecks = append(healthchecks, redis.Healthcheck(client))
		log.InfoContext(ctx, "tenant cache enabled", slog.Duration("ttl", appCfg.TenantCacheTTL))
	}

	// Role catalog: seed the defaults, then load from the configured source.
	if err := roleSource.Seed(ctx, rbac.DefaultRoles()); err != nil {
		return err
	}
	var catalogSource rbac.Source = roleSource
	if appCfg.RolesFile != "" {
		catalogSource = rbac.NewFileSource(appCfg.RolesFile)
	}
	catalog, err := rbac.NewCatalog(ctx, catalogSource)
	if err != nil {
		return err
	}
	if _, err := catalog.Require(rbac.RoleAdmin); err != nil {
		return err
	}
	if _, err := catalog.Require(rbac.RoleTenantAdmin); err != nil {
		return err
	}

	if err := seedAdmin(ctx, seedDeps{
		runner:    runner,
		users:     users,
		tenants:   tenants,
		resources: resources,
		bindings:  bindings,
		catalog:   catalog,
	}, appCfg, log); err != nil {
		return err
	}

	auditLog := audit.NewLogger(auditStorage,
		audit.WithRequestIDExtractor(func(ctx context.Context) (string, bool) {
			id := requestid.FromContext(ctx)
			return id, id != ""
		}),
	)

	engine := authz.NewEngine(catalog, bindings, resources,
		authz.WithEngineLogger(log))

	var limiter ratelimit.Limiter
	if appCfg.RateLimit > 0 {
		limiter, err = ratelimit.NewSlidingWindow(
			ratelimit.NewMemoryStore(), appCfg.RateLimit, appCfg.RateLimitWindow)
		if err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Tenants: tenant.NewService(tenants, resources, bindings, users, catalog, auditLog,
			tenant.WithTxRunner(runner),
			tenant.WithLogger(log)),
		Resources: resource.NewService(resources, engine, auditLog,
			resource.WithTxRunner(runner),
			resource.WithLogger(log)),
		Grants: authz.NewGrants(engine, catalog, bindings, resources, users, auditLog,
			authz.WithGrantsTxRunner(runner)),
		Engine:       engine,
		Logger:       log,
		RateLimiter:  limiter,
		Healthchecks: healthchecks,
	})

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("accessd listening", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("accessd stopped")
		}),
	)
	return srv.Run(ctx, router)
}

// systemTenantCode names the reserved tenant whose root resource carries the
// default administrator's ADMIN binding.
const systemTenantCode = "system"

type seedDeps struct {
	runner    txn.Runner
	users     user.Store
	tenants   tenant.Store
	resources resource.Store
	bindings  authz.BindingStore
	catalog   *rbac.Catalog
}

// seedAdmin ensures the default administrator account exists and holds a
// global ADMIN grant, so a fresh deployment can create its first tenant.
func seedAdmin(ctx context.Context, deps seedDeps, cfg appConfig, log *slog.Logger) error {
	admin, err := deps.users.GetByEmail(ctx, cfg.AdminEmail)
	if errors.Is(err, user.ErrUserNotFound) {
		hash, err := user.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}

		admin = user.New(cfg.AdminEmail, "admin", hash)
		if err := deps.users.Create(ctx, admin); err != nil {
			return err
		}
		log.InfoContext(ctx, "default admin created",
			slog.String("email", cfg.AdminEmail),
			logger.UserID(admin.ID))
	} else if err != nil {
		return err
	}

	exists, err := deps.tenants.ExistsByCode(ctx, systemTenantCode)
	if err != nil || exists {
		return err
	}

	adminRole, err := deps.catalog.Require(rbac.RoleAdmin)
	if err != nil {
		return err
	}

	sys := tenant.New("System", systemTenantCode)
	root := resource.NewRoot(sys.ID, "System")
	err = deps.runner.InTx(ctx, func(ctx context.Context) error {
		if err := deps.tenants.Create(ctx, sys); err != nil {
			return err
		}
		if err := deps.resources.Create(ctx, root); err != nil {
			return err
		}
		return deps.bindings.Create(ctx, authz.NewBinding(admin.ID, adminRole.ID, root.ID))
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "system tenant bootstrapped",
		logger.UserID(admin.ID),
		logger.ResourceID(root.ID))
	return nil
}
