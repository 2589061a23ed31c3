package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/markpro/adapter/api"
	editorApp "github.com/felixgeelhaar/markpro/internal/editor/application"
	exportApp "github.com/felixgeelhaar/markpro/internal/export/application"
	exportDomain "github.com/felixgeelhaar/markpro/internal/export/domain"
	"github.com/felixgeelhaar/markpro/internal/export/infrastructure/document"
	"github.com/felixgeelhaar/markpro/internal/export/infrastructure/markdown"
	licensingApp "github.com/felixgeelhaar/markpro/internal/licensing/application"
	licensingDomain "github.com/felixgeelhaar/markpro/internal/licensing/domain"
	"github.com/felixgeelhaar/markpro/internal/licensing/infrastructure/verifier"
	"github.com/felixgeelhaar/markpro/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/markpro/pkg/config"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

// MetricsNamespace prefixes every exported Prometheus series.
const MetricsNamespace = "markpro"

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	Store SlotStore

	// Publishers
	EventPublisher eventbus.Publisher

	// Observability
	Metrics *observability.PrometheusMetrics
	Health  *observability.HealthRegistry

	// Licensing
	Verifier       licensingDomain.Verifier
	LicenseService *licensingApp.Service
	VerifyService  *licensingApp.VerifyService

	// Export and editor
	ExportService *exportApp.Service
	EditorService *editorApp.Service
}

// NewContainer creates a new dependency container from cfg.
// The entitlement state starts Free; callers run Restore once at startup.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(MetricsNamespace),
		Health:  observability.NewHealthRegistry(),
	}

	store, err := NewSlotStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s slot store: %w", cfg.Storage, err)
	}
	c.Store = store
	c.Health.Register("storage", observability.PingHealthChecker("storage", store.Ping))
	logger.Info("slot store ready", "backend", cfg.Storage)

	publisher, err := c.newPublisher()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.EventPublisher = publisher

	c.Verifier = c.newVerifier()

	c.LicenseService = licensingApp.NewService(store, logger,
		licensingApp.WithPublisher(publisher),
		licensingApp.WithMetrics(c.Metrics),
	)
	c.VerifyService = licensingApp.NewVerifyService(c.Verifier, cfg.VerifyTimeout, c.Metrics, logger)

	c.ExportService = exportApp.NewService(exportApp.ServiceConfig{
		Renderer: markdown.NewRenderer(),
		Exporters: []exportDomain.Exporter{
			document.NewHTMLExporter(),
			document.NewPDFExporter(),
		},
		Previewer: markdown.NewTerminalPreviewer(),
		Gate:      c.LicenseService,
		Metrics:   c.Metrics,
		Logger:    logger,
	})
	c.EditorService = editorApp.NewService(store, logger)

	return c, nil
}

func (c *Container) newPublisher() (eventbus.Publisher, error) {
	switch c.Config.Events {
	case config.EventsRabbitMQ:
		pub, err := eventbus.NewRabbitMQPublisher(eventbus.RabbitMQConfig{
			URL:      c.Config.RabbitMQURL,
			Exchange: c.Config.EventsExchange,
		}, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Health.Register("broker", observability.BrokerHealthChecker(pub.Ping))
		return pub, nil
	case config.EventsInProcess:
		bus := eventbus.NewInProcessEventBus(c.Logger)
		if err := bus.RegisterConsumer(licensingApp.NewEventLogger(c.Logger)); err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return eventbus.NewNoopPublisher(c.Logger), nil
	}
}

func (c *Container) newVerifier() licensingDomain.Verifier {
	if c.Config.VerifierMode != config.VerifierRemote {
		return verifier.NewSubstringVerifier()
	}

	vcfg := verifier.DefaultLicenseServerConfig()
	if c.Config.LicenseServerURL != "" {
		vcfg.BaseURL = c.Config.LicenseServerURL
	}
	if c.Config.LicenseProductPermalink != "" {
		vcfg.ProductPermalink = c.Config.LicenseProductPermalink
	}
	vcfg.Token = c.Config.LicenseServerToken
	if c.Config.VerifyTimeout > 0 {
		vcfg.Timeout = c.Config.VerifyTimeout
	}
	if c.Config.VerifyBreakerFailures > 0 {
		vcfg.BreakerFailures = uint32(c.Config.VerifyBreakerFailures)
	}
	if c.Config.VerifyBreakerTimeout > 0 {
		vcfg.BreakerTimeout = c.Config.VerifyBreakerTimeout
	}

	c.Logger.Info("using remote license server", "url", vcfg.BaseURL, "product", vcfg.ProductPermalink)
	v := verifier.NewLicenseServerVerifier(vcfg, c.Logger)
	c.Health.Register("license_server", observability.VerifierHealthChecker(v.Ping))
	return v
}

// APIServer builds the HTTP service boundary over the container's services.
func (c *Container) APIServer(addr string) *api.Server {
	cfg := api.DefaultServerConfig()
	if addr != "" {
		cfg.Addr = addr
	}

	var metrics http.Handler
	if c.Metrics != nil {
		metrics = c.Metrics.Handler()
	}

	return api.NewServer(cfg, api.Handlers{
		License: api.NewLicenseHandler(api.LicenseHandlerConfig{
			Verify:  c.VerifyService,
			License: c.LicenseService,
			Logger:  c.Logger,
		}),
		Export: api.NewExportHandler(api.ExportHandlerConfig{
			Export:     c.ExportService,
			UpgradeURL: c.Config.UpgradeURL,
			Logger:     c.Logger,
		}),
		Health:  c.Health,
		Metrics: metrics,
	}, c.Logger)
}

// Close releases the publisher and the slot store.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.Store != nil {
		if err := closeStore(c.Store); err != nil {
			c.Logger.Warn("error closing slot store", "error", err)
		} else {
			c.Logger.Info("slot store closed")
		}
	}
}
