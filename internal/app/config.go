package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr string `default:"0.0.0.0:8080" usage:"API server listen address"`

	// Collaborator base URLs. Every one of them is required: the checkout
	// pipeline cannot run with a collaborator missing.
	CartURL    string `usage:"Cart service base URL" flag:"cart-url"`
	CatalogURL string `usage:"Product catalog service base URL" flag:"catalog-url"`
	CouponURL  string `usage:"Coupon service base URL" flag:"coupon-url"`
	OrderURL   string `usage:"Order service base URL" flag:"order-url"`
	PaymentURL string `usage:"Payment service base URL" flag:"payment-url"`

	GatewayTimeout time.Duration `default:"10s" usage:"Per-call timeout for collaborator requests" flag:"gateway-timeout"`

	// ShippingFee is the flat shipping cost in VND. FREE_SHIPPING coupons
	// discount exactly this amount.
	ShippingFee int64 `default:"30000" usage:"Flat shipping fee (VND)" flag:"shipping-fee"`

	// CodebookPath points at the bloom codebook produced by
	// cmd/codebook-build. Empty disables the local coupon pre-check.
	CodebookPath string `default:"" usage:"Path to the coupon codebook bloom filter" flag:"codebook-path"`

	// RedisAddr enables the Redis recovery mirror; empty keeps the
	// in-memory mirror.
	RedisAddr string `default:"" usage:"Redis address for the recovery mirror (empty = in-memory)" flag:"redis-addr"`
	MirrorCap int    `default:"50" usage:"Max mirrored orders kept per user" flag:"mirror-cap"`

	// WalletSettle is the simulated MOMO confirmation delay.
	WalletSettle time.Duration `default:"1500ms" usage:"Simulated wallet settle delay" flag:"wallet-settle"`

	// NotifyWindow deduplicates identical user-facing error notifications.
	NotifyWindow time.Duration `default:"3s" usage:"Duplicate-notification suppression window" flag:"notify-window"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults, then validates the collaborator URLs.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	required := []struct {
		name  string
		value string
	}{
		{"SHOP_CART_URL", cfg.CartURL},
		{"SHOP_CATALOG_URL", cfg.CatalogURL},
		{"SHOP_COUPON_URL", cfg.CouponURL},
		{"SHOP_ORDER_URL", cfg.OrderURL},
		{"SHOP_PAYMENT_URL", cfg.PaymentURL},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, errors.Errorf("collaborator URL is required: set %s", r.name)
		}
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) onto the SHOP_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
