package server

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/configuration"
	"github.com/jacksonlee411/approvals/pkg/constants"
	"github.com/jacksonlee411/approvals/pkg/metrics"
	"github.com/jacksonlee411/approvals/pkg/middleware"
	"github.com/jacksonlee411/approvals/pkg/routing"
	"github.com/jacksonlee411/approvals/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	// Pool is nil when the in-memory store is used.
	Pool *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()), // root span of every request
		middleware.Provide(constants.AppKey, app),
		middleware.ProvidePool(options.Pool),
		middleware.Cors(middleware.SplitOrigins(conf.CorsOrigins), "X-Total-Count"),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	classifier, err := routeClassifier(conf)
	if err != nil {
		return nil, err
	}
	middlewares = append(middlewares, middleware.OpsGuard(conf, classifier.Prefixes(routing.RouteClassOps)...))
	app.RegisterMiddleware(middlewares...)

	var pinger metrics.Pinger
	if options.Pool != nil {
		pinger = options.Pool
	}
	app.RegisterControllers(metrics.NewHealthController(conf.Store, pinger))
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	return server.NewHTTPServer(app, http.HandlerFunc(NotFound), http.HandlerFunc(MethodNotAllowed)), nil
}

// routeClassifier loads the route allowlist. The configured prometheus path is always
// treated as an ops route even when the allowlist predates it.
func routeClassifier(conf *configuration.Configuration) (*routing.Classifier, error) {
	rules, err := routing.LoadAllowlist("", "server")
	if errors.Is(err, routing.ErrAllowlistNotFound) {
		rules, err = routing.DefaultRules(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load routing allowlist")
	}
	rules = append(rules, routing.AllowlistRule{Prefix: metrics.HealthPath, Class: routing.RouteClassOps})
	if conf.Prometheus.Enabled {
		rules = append(rules, routing.AllowlistRule{Prefix: conf.Prometheus.Path, Class: routing.RouteClassOps})
	}
	return routing.NewClassifier(rules), nil
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.ErrorJSON(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.ErrorJSON(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}
