package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/coop-inventory/api-contract"
	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/config"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http/apierr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http/metric"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http/middleware"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http/swagger"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	productSvc service.ProductService
	saleSvc    service.SaleService
	reportSvc  service.ReportService
	health     db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	saleSvc service.SaleService,
	reportSvc service.ReportService,
	health db.HealthChecker,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		registry:   registry,
		metrics:    metric.New(registry),
		productSvc: productSvc,
		saleSvc:    saleSvc,
		reportSvc:  reportSvc,
		health:     health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router serving the API, docs and metrics.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	openapiRouter, err := middleware.NewOpenAPIRouter(ctx, apicontract.GetSpecBytes())
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.OpenAPIValidator(openapiRouter, s.handleRequestError))
		s.RegisterHandlers(r)
	})

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.productSvc)
	sales := newSaleHandler(s.saleSvc)
	reports := newReportHandler(s.reportSvc)
	health := newHealthHandler(s.health, s.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.wrap(products.ListProducts))
			r.Post("/", s.wrap(products.CreateProduct))
			r.Put("/{id}", s.wrap(products.UpdateProduct))
			r.Delete("/{id}", s.wrap(products.DeleteProduct))
			r.Post("/{id}/stock", s.wrap(products.AddStock))
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", s.wrap(sales.ListSales))
			r.Post("/", s.wrap(sales.RecordSale))
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", s.wrap(reports.GetDashboard))
			r.Get("/summary", s.wrap(reports.GetReport))
		})
	})

	r.Get("/healthz", s.wrap(health.HealthCheck))
}

func (s *Service) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	err = apperr.ValidationErr.WrapParent(err)
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	s.logger.DebugContext(r.Context(), "http request rejected", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding error request",
			slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
