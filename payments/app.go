package payments

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alovak/tuitionpay/internal/gateway"
	"github.com/alovak/tuitionpay/internal/middleware"
	"github.com/alovak/tuitionpay/internal/pricing"
	"github.com/alovak/tuitionpay/internal/txref"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// App is the payment relay application. It wires the fee schedule, gateway
// client and HTTP server together and owns their lifecycle.
type App struct {
	srv    *http.Server
	wg     *sync.WaitGroup
	Addr   string
	logger *slog.Logger
	config *Config
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "paymentrelay"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:     &sync.WaitGroup{},
		logger: logger,
		config: config,
	}
}

// Handler builds the full HTTP handler: middleware, API routes and health.
func (a *App) Handler() (http.Handler, error) {
	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fees := pricing.DefaultSchedule()
	if a.config.FeeScheduleFile != "" {
		var err error
		fees, err = pricing.LoadSchedule(a.config.FeeScheduleFile)
		if err != nil {
			return nil, err
		}
		a.logger.Info("fee schedule loaded", slog.String("file", a.config.FeeScheduleFile), slog.Int("programs", len(fees.Programs())))
	}

	if !a.config.HasGatewayCredentials() {
		a.logger.Warn("gateway credentials missing; payment initiation will fail until GATEWAY_SECRET_KEY and GATEWAY_MERCHANT_BOX are set")
	}

	gw := gateway.New(a.config.GatewayBaseURL, a.config.GatewaySecretKey, &http.Client{Timeout: a.config.GatewayTimeout})
	gw.MaxRetries = a.config.GatewayMaxRetries

	svc := NewService(fees, gw, txref.NewGenerator(a.config.ReferencePrefix), a.config)

	cors, err := middleware.CORS(a.config.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.NewStructuredLogger(a.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors)

	NewAPI(svc, a.logger).AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		if !a.config.HasGatewayCredentials() {
			http.Error(w, "gateway credentials not configured", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return router, nil
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	handler, err := a.Handler()
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("shutting down http server", "err", err)
		}
	}

	a.wg.Wait()

	a.logger.Info("app stopped")
}
