// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	eventsfeature "github.com/dalemusser/eventhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	homefeature "github.com/dalemusser/eventhub/internal/app/features/home"
	usersfeature "github.com/dalemusser/eventhub/internal/app/features/users"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/router"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for EventHub.
//
// WAFFLE calls this after configuration, ConnectDB and Startup. The stores
// share deps.Mongo, which dials on the first request that needs it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// RequestID, RealIP, Recoverer, body cap (max_request_body_bytes),
	// metrics, access log and JSON 404/405 come from WAFFLE's router.
	r := router.New(coreCfg, logger)

	r.Use(reqlog.EchoRequestID)
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: appCfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", reqlog.HeaderRequestID},
		ExposedHeaders: []string{reqlog.HeaderRequestID},
		MaxAge:         300,
	}))

	// Health check for load balancers; connects on demand.
	healthHandler := healthfeature.NewHandler(deps.Mongo, logger)
	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	eventsHandler := eventsfeature.NewHandler(eventstore.New(deps.Mongo), logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))
	r.Get("/latest-events", eventsHandler.ServeLatest)

	usersHandler := usersfeature.NewHandler(userstore.New(deps.Mongo), logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	return r, nil
}
