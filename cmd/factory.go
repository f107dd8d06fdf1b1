package cmd

import (
	"context"
	"fmt"

	"javasegment/internal/adapter/inbound/api"
	inboundservice "javasegment/internal/adapter/inbound/service"
	"javasegment/internal/adapter/outbound/auditlog"
	"javasegment/internal/adapter/outbound/cache"
	"javasegment/internal/adapter/outbound/messaging"
	"javasegment/internal/adapter/outbound/reportclient"
	"javasegment/internal/adapter/outbound/repository"
	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/service"
	"javasegment/internal/config"
	"javasegment/internal/port/inbound"
	"javasegment/internal/port/outbound"
	"javasegment/internal/version"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServiceFactory builds services and adapters from configuration and owns the
// connections it opens.
type ServiceFactory struct {
	config *config.Config

	metrics    *service.SegmentMetrics
	segmenter  *service.SegmentationService
	pool       *pgxpool.Pool
	repository *repository.PostgreSQLReportRepository
	publisher  *messaging.NATSMessagePublisher
}

// NewServiceFactory creates a new ServiceFactory.
func NewServiceFactory(cfg *config.Config) *ServiceFactory {
	return &ServiceFactory{config: cfg}
}

// Metrics returns the shared segmentation metrics. Instrument creation failures
// only disable metrics.
func (sf *ServiceFactory) Metrics() *service.SegmentMetrics {
	if sf.metrics != nil {
		return sf.metrics
	}
	metrics, err := service.NewSegmentMetrics()
	if err != nil {
		slogger.WarnNoCtx("Metrics disabled", slogger.Field("error", err.Error()))
		return nil
	}
	sf.metrics = metrics
	return metrics
}

// SegmentationService returns the shared segmentation service, with an LRU cache
// when segmenter.cache_size is positive.
func (sf *ServiceFactory) SegmentationService() (*service.SegmentationService, error) {
	if sf.segmenter != nil {
		return sf.segmenter, nil
	}

	options, err := sf.config.Segmenter.Options()
	if err != nil {
		return nil, err
	}

	var segmentCache outbound.SegmentCache
	if sf.config.Segmenter.CacheSize > 0 {
		lruCache, err := cache.NewSegmentCache(sf.config.Segmenter.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create segment cache: %w", err)
		}
		segmentCache = lruCache
	}

	sf.segmenter = service.NewSegmentationService(service.SegmentationServiceConfig{
		Options:        options,
		MaxSourceBytes: sf.config.API.MaxSourceBytes,
	}, segmentCache, sf.Metrics())
	return sf.segmenter, nil
}

// Repository connects to PostgreSQL and ensures the report table exists. It
// returns nil when the database is disabled.
func (sf *ServiceFactory) Repository(ctx context.Context) (*repository.PostgreSQLReportRepository, error) {
	if !sf.config.Database.Enabled || sf.repository != nil {
		return sf.repository, nil
	}

	pool, err := repository.NewDatabaseConnection(ctx, sf.config.Database)
	if err != nil {
		return nil, err
	}
	repo := repository.NewPostgreSQLReportRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	sf.pool = pool
	sf.repository = repo
	return repo, nil
}

// Publisher connects to NATS and ensures the stream exists. It returns nil when
// NATS is disabled.
func (sf *ServiceFactory) Publisher() (*messaging.NATSMessagePublisher, error) {
	if !sf.config.NATS.Enabled || sf.publisher != nil {
		return sf.publisher, nil
	}

	publisher, err := messaging.NewNATSMessagePublisher(sf.config.NATS)
	if err != nil {
		return nil, err
	}
	if err := publisher.Connect(); err != nil {
		return nil, err
	}
	if err := publisher.EnsureStream(); err != nil {
		_ = publisher.Disconnect()
		return nil, err
	}

	sf.publisher = publisher
	return publisher, nil
}

// ReportService wires the report engine client with the optional repository,
// publisher and audit trail.
func (sf *ServiceFactory) ReportService(ctx context.Context) (*service.ReportService, error) {
	segmenter, err := sf.SegmentationService()
	if err != nil {
		return nil, err
	}

	client, err := reportclient.NewClient(sf.config.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to create report client: %w", err)
	}

	deps := service.ReportServiceDeps{
		Segmenter: segmenter,
		Generator: client,
		Metrics:   sf.Metrics(),
	}

	repo, err := sf.Repository(ctx)
	if err != nil {
		return nil, err
	}
	if repo != nil {
		deps.Repository = repo
	}

	publisher, err := sf.Publisher()
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		deps.Publisher = publisher
	}

	if sf.config.Audit.Enabled {
		deps.Audit = auditlog.NewFileAuditLogger(sf.config.Audit)
	}

	return service.NewReportService(deps, service.ReportServiceConfig{
		SendRawText:    sf.config.Report.SendRawText,
		MaxSourceBytes: sf.config.API.MaxSourceBytes,
	})
}

// HealthService reports on whichever of the database and NATS are connected, plus
// the segmenter once it has been built.
func (sf *ServiceFactory) HealthService() inbound.HealthService {
	var repo outbound.ReportRepository
	if sf.repository != nil {
		repo = sf.repository
	}
	var publisher outbound.SegmentEventPublisher
	if sf.publisher != nil {
		publisher = sf.publisher
	}
	var opts []inboundservice.HealthOption
	if sf.segmenter != nil {
		opts = append(opts, inboundservice.WithSegmenterStatus(sf.segmenter))
	}
	return inboundservice.NewHealthServiceAdapter(repo, publisher, version.GetVersion().Version, opts...)
}

// CreateServer builds the HTTP server. The report route is only served when a
// report engine is configured.
func (sf *ServiceFactory) CreateServer(ctx context.Context) (*api.Server, error) {
	segmenter, err := sf.SegmentationService()
	if err != nil {
		return nil, err
	}

	builder := api.NewServerBuilder(sf.config).
		WithSegmentationService(segmenter).
		WithErrorHandler(api.NewDefaultErrorHandler())

	if sf.config.Report.BaseURL != "" {
		reports, err := sf.ReportService(ctx)
		if err != nil {
			return nil, err
		}
		builder = builder.WithReportService(reports)
	} else {
		slogger.Warn(ctx, "report.base_url not set, report endpoint disabled", nil)
	}

	return builder.
		WithHealthService(sf.HealthService()).
		WithDefaultMiddleware().
		Build()
}

// Close releases every connection opened by the factory.
func (sf *ServiceFactory) Close() {
	if sf.publisher != nil {
		if err := sf.publisher.Disconnect(); err != nil {
			slogger.WarnNoCtx("Failed to disconnect from NATS", slogger.Field("error", err.Error()))
		}
		sf.publisher = nil
	}
	if sf.pool != nil {
		sf.pool.Close()
		sf.pool = nil
		sf.repository = nil
	}
}
