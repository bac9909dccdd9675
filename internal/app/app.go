package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/oakmart/checkout/internal/domain/address"
	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/discount"
	"github.com/oakmart/checkout/internal/domain/order"
	"github.com/oakmart/checkout/internal/domain/payment"
	"github.com/oakmart/checkout/internal/gateway"
	"github.com/oakmart/checkout/internal/handler"
	"github.com/oakmart/checkout/internal/mirror"
	"github.com/oakmart/checkout/internal/notify"
	"github.com/oakmart/checkout/pkg/health"
	"github.com/oakmart/checkout/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	shippingFee := decimal.NewFromInt(cfg.ShippingFee)

	// Collaborator clients.
	gwCfg := func(base string) gateway.Config {
		return gateway.Config{BaseURL: base, Timeout: cfg.GatewayTimeout}
	}
	cartClient := gateway.NewCartClient(gwCfg(cfg.CartURL))
	catalogClient := gateway.NewCatalogClient(gwCfg(cfg.CatalogURL))
	couponClient := gateway.NewCouponClient(gwCfg(cfg.CouponURL))
	orderClient := gateway.NewOrderClient(gwCfg(cfg.OrderURL))
	paymentClient := gateway.NewPaymentClient(gwCfg(cfg.PaymentURL))

	// Optional offline coupon codebook.
	var codebook *discount.Codebook
	if cfg.CodebookPath != "" {
		cb, err := discount.LoadCodebook(cfg.CodebookPath)
		if err != nil {
			return errors.Wrap(err, "load coupon codebook")
		}
		codebook = cb
		lg.Info("Coupon codebook loaded", zap.String("path", cfg.CodebookPath))
	}

	// Recovery mirror: Redis when configured, in-memory otherwise.
	var (
		orderMirror mirror.Mirror
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		orderMirror = mirror.NewRedis(redisClient, cfg.MirrorCap)
		lg.Info("Recovery mirror on Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		orderMirror = mirror.NewMemory(cfg.MirrorCap)
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("order-service", 5*time.Second,
		health.HTTPPingCheck(nil, cfg.OrderURL))
	if redisClient != nil {
		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	aggregator := checkout.NewAggregator(cartClient, catalogClient)
	engine := discount.NewEngine(couponClient, codebook, shippingFee)
	submitter := order.NewSubmitter(orderClient, shippingFee)
	dispatcher := payment.NewDispatcher(paymentClient, orderMirror, cfg.WalletSettle)

	// HTTP surface.
	h := handler.NewHandler(
		aggregator,
		checkout.NewStore(),
		address.NewRegistry(),
		engine,
		submitter,
		dispatcher,
		orderMirror,
		notify.NewQueue(cfg.NotifyWindow),
		shippingFee,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "checkout-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-User-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: flip readiness, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
