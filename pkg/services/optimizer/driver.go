package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/report"
	"github.com/rs/zerolog"
)

// ErrRunInProgress is returned when a run is requested while another one has
// not finished. Runs never overlap.
var ErrRunInProgress = errors.New("optimization run already in progress")

// ReportSink persists a finished report. An empty filename lets the sink
// derive a timestamped one.
type ReportSink interface {
	Save(rep *domain.Report, filename string) (string, error)
}

// Driver orchestrates one full cycle: analyze every configured provider,
// aggregate and persist the report, then optionally stop flagged compute.
type Driver struct {
	cfg      domain.Config
	registry Registry
	sink     ReportSink

	runMu sync.Mutex

	mu        sync.Mutex
	providers map[string]ResourceProvider
	last      *domain.Report
}

func NewDriver(cfg domain.Config, registry Registry, sink ReportSink) *Driver {
	return &Driver{
		cfg:       cfg,
		registry:  registry,
		sink:      sink,
		providers: make(map[string]ResourceProvider),
	}
}

// RunOnce executes a single analyze -> report -> (remediate) cycle. It is
// the externally triggered entry point; a second invocation while one is in
// flight fails with ErrRunInProgress instead of interleaving.
func (d *Driver) RunOnce(ctx context.Context) (*domain.Report, error) {
	return d.RunOnceNamed(ctx, "")
}

// RunOnceNamed is RunOnce with a caller-supplied report filename; an empty
// name lets the sink derive a timestamped one.
func (d *Driver) RunOnceNamed(ctx context.Context, filename string) (*domain.Report, error) {
	if !d.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer d.runMu.Unlock()

	logger := zerolog.Ctx(ctx)

	rep := d.GenerateReport(ctx)

	path, err := d.sink.Save(rep, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info().Str("path", path).Msg("report saved")

	if d.cfg.AutoOptimize {
		d.stopUnderutilized(ctx)
	}

	d.mu.Lock()
	d.last = rep
	d.mu.Unlock()

	return rep, nil
}

// GenerateReport analyzes all providers and aggregates their findings. It is
// total: a provider failure degrades to a failed section, never an error.
func (d *Driver) GenerateReport(ctx context.Context) *domain.Report {
	aws := d.analyzeProvider(ctx, ProviderAWS, d.cfg.AWSEnabled)
	azure := d.analyzeProvider(ctx, ProviderAzure, d.cfg.AzureEnabled)
	gcp := d.analyzeProvider(ctx, ProviderGCP, d.cfg.GCPEnabled)

	return report.Aggregate(aws, azure, gcp)
}

// Schedule runs one cycle immediately and then on a fixed interval until the
// context is canceled.
func (d *Driver) Schedule(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	interval := time.Duration(d.cfg.RunIntervalHours) * time.Hour

	d.runScheduled(ctx)
	logger.Info().Int("interval_hours", d.cfg.RunIntervalHours).Msg("optimizer started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.runScheduled(ctx)
		}
	}
}

// Busy reports whether a run is currently in flight.
func (d *Driver) Busy() bool {
	if d.runMu.TryLock() {
		d.runMu.Unlock()
		return false
	}
	return true
}

// LastReport returns the most recent report produced by this process, if any.
func (d *Driver) LastReport() *domain.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Driver) runScheduled(ctx context.Context) {
	if _, err := d.RunOnce(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("scheduled run failed")
	}
}

func (d *Driver) analyzeProvider(ctx context.Context, name string, enabled bool) domain.ProviderFindings {
	logger := zerolog.Ctx(ctx)

	if !enabled {
		logger.Warn().Str("provider", name).Msg("credentials not configured")
		return domain.NewProviderFindings(domain.StatusNotConfigured)
	}

	p, err := d.provider(ctx, name)
	if err != nil {
		return d.failed(ctx, name, err)
	}

	findings, err := p.Analyze(ctx)
	if err != nil {
		return d.failed(ctx, name, err)
	}
	return findings
}

// stopUnderutilized re-derives findings fresh rather than reusing the report
// just generated, so a resource stopped between analysis and remediation is
// re-observed. Only compute resources are ever auto-remediated.
func (d *Driver) stopUnderutilized(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	for name, enabled := range map[string]bool{
		ProviderAWS:   d.cfg.AWSEnabled,
		ProviderAzure: d.cfg.AzureEnabled,
		ProviderGCP:   d.cfg.GCPEnabled,
	} {
		if !enabled {
			continue
		}

		p, err := d.provider(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("provider", name).Msg("failed to create provider for remediation")
			continue
		}

		findings, err := p.Analyze(ctx)
		if err != nil {
			logger.Error().Err(err).Str("provider", name).Msg("failed to analyze resources for remediation")
			continue
		}

		for _, f := range findings.Compute {
			if f.Issue != domain.IssueLowUtilization {
				continue
			}
			logger.Info().Str("provider", name).Str("id", f.Record.ID).Msg("stopping underutilized compute resource")
			if err := p.StopCompute(ctx, f.Record); err != nil {
				logger.Error().Err(err).Str("provider", name).Str("id", f.Record.ID).Msg("failed to stop resource")
			}
		}
	}
}

func (d *Driver) provider(ctx context.Context, name string) (ResourceProvider, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.providers[name]; ok {
		return p, nil
	}

	p, err := d.registry.Create(ctx, name, d.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}
	d.providers[name] = p
	return p, nil
}

func (d *Driver) failed(ctx context.Context, name string, err error) domain.ProviderFindings {
	zerolog.Ctx(ctx).Error().Err(err).Str("provider", name).Msg("resource analysis failed")
	findings := domain.NewProviderFindings(domain.StatusFailed)
	findings.Error = err.Error()
	return findings
}
