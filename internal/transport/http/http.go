package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	_ "github.com/corray333/backend-labs/orderitems/internal/transport/http/docs"
	additem "github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/add_item"
	getorderitems "github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/get_order_items"
	"github.com/corray333/backend-labs/orderitems/internal/transport/http/v1/healthcheck"
	"github.com/corray333/backend-labs/orderitems/pkg/http/middleware/requestid"
	"github.com/corray333/backend-labs/orderitems/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/orderitems/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type service interface {
	AddItemToOrder(
		ctx context.Context,
		orderID, productID int64,
		quantity int,
	) (orderitem.AddItemResult, error)
	GetOrderDetails(ctx context.Context, orderID int64) (order.Details, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	db      pinger
}

func NewHTTPTransport(service service, db pinger) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		db:      db,
	}
}

// Run serves until Shutdown is called. It returns http.ErrServerClosed after
// a graceful shutdown.
func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthcheck", h.healthcheck)
	h.router.Post("/orders/{order_id}/items", h.addItem)
	h.router.Get("/orders/{order_id}/items", h.getOrderItems)
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (h *HTTPTransport) addItem(w http.ResponseWriter, r *http.Request) {
	additem.AddItem(w, r, h.service)
}

func (h *HTTPTransport) getOrderItems(w http.ResponseWriter, r *http.Request) {
	getorderitems.GetOrderItems(w, r, h.service)
}

func (h *HTTPTransport) healthcheck(w http.ResponseWriter, r *http.Request) {
	healthcheck.Healthcheck(w, r, h.db)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(requestid.NewRequestIDMiddleware)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: viper.GetDuration("server.http.read_timeout"),
		ReadTimeout:       viper.GetDuration("server.http.read_timeout"),
		WriteTimeout:      viper.GetDuration("server.http.write_timeout"),
	}
}
