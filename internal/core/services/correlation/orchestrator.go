package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultWorkers bounds concurrent device pipelines.
const DefaultWorkers = 8

const tracerName = "github.com/lcalzada-xor/iotsec/internal/core/services/correlation"

// Pipeline outcomes, reported as metric labels.
const (
	outcomeNoVendor          = "no_vendor"
	outcomeNoVulnerabilities = "no_vulnerabilities"
	outcomeFilteredOut       = "filtered_out"
	outcomeCorrelated        = "correlated"
	outcomeCanceled          = "canceled"
)

// Dependencies wires the orchestrator's collaborators.
type Dependencies struct {
	Identifier ports.VendorIdentifier
	Source     ports.VulnerabilitySource
	Alerts     ports.AlertPersister
	Devices    ports.DeviceRepository
	Filter     *RelevanceFilter
	Suggester  *SuggestionEngine
	Logger     *slog.Logger
}

// Orchestrator runs the per-device correlation pipeline on a bounded pool.
type Orchestrator struct {
	identifier ports.VendorIdentifier
	source     ports.VulnerabilitySource
	alerts     ports.AlertPersister
	devices    ports.DeviceRepository
	filter     *RelevanceFilter
	suggester  *SuggestionEngine
	workers    int
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewOrchestrator creates an orchestrator with workers concurrent pipelines.
func NewOrchestrator(deps Dependencies, workers int) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if deps.Filter == nil {
		deps.Filter = NewRelevanceFilter(nil, DefaultLimit)
	}
	if deps.Suggester == nil {
		deps.Suggester = NewSuggestionEngine(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Orchestrator{
		identifier: deps.Identifier,
		source:     deps.Source,
		alerts:     deps.Alerts,
		devices:    deps.Devices,
		filter:     deps.Filter,
		suggester:  deps.Suggester,
		workers:    workers,
		logger:     deps.Logger,
		tracer:     otel.Tracer(tracerName),
	}
}

type pipelineResult struct {
	result *domain.CorrelationResult
	drafts []domain.AlertDraft
}

// Correlate runs the pipeline for every device and persists the alert
// drafts in a single call. Results follow input order; devices without a
// vendor or without relevant vulnerabilities are omitted. Alert storage
// failures are logged and do not fail the run.
func (o *Orchestrator) Correlate(ctx context.Context, ownerID string, devices []domain.Device) ([]domain.CorrelationResult, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	ctx, span := o.tracer.Start(ctx, "correlation.Correlate",
		trace.WithAttributes(attribute.Int("devices", len(devices))))
	defer span.End()

	start := time.Now()
	defer func() { telemetry.CorrelationDuration.Observe(time.Since(start).Seconds()) }()

	outputs := o.runPool(ctx, ownerID, devices)
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results := make([]domain.CorrelationResult, 0, len(devices))
	var drafts []domain.AlertDraft
	for _, out := range outputs {
		if out.result == nil {
			continue
		}
		results = append(results, *out.result)
		drafts = append(drafts, out.drafts...)
	}

	if len(drafts) > 0 {
		stored, err := o.alerts.Persist(ctx, drafts)
		if err != nil {
			span.RecordError(err)
			o.logger.Error("Alert persistence failed", "owner", ownerID, "drafts", len(drafts), "error", err)
		}
		o.logger.Info("Correlation alerts stored", "owner", ownerID, "drafts", len(drafts), "stored", len(stored))
	}

	span.SetAttributes(attribute.Int("results", len(results)), attribute.Int("drafts", len(drafts)))
	return results, nil
}

// CorrelateOwner loads the owner's stored devices (restricted to deviceIDs
// when non-empty) and correlates them.
func (o *Orchestrator) CorrelateOwner(ctx context.Context, ownerID string, deviceIDs []string) ([]domain.CorrelationResult, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	devices, err := o.devices.ListDevices(ctx, ownerID, deviceIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load devices: %w", domain.ErrStorageFailure, err)
	}
	return o.Correlate(ctx, ownerID, devices)
}

// runPool feeds device indexes to a fixed set of workers. Each worker writes
// only its own slot, so no further locking is needed.
func (o *Orchestrator) runPool(ctx context.Context, ownerID string, devices []domain.Device) []pipelineResult {
	outputs := make([]pipelineResult, len(devices))
	if len(devices) == 0 {
		return outputs
	}

	workers := min(o.workers, len(devices))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outputs[i] = o.process(ctx, ownerID, devices[i])
			}
		}()
	}

	for i := range devices {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outputs
}

func (o *Orchestrator) process(ctx context.Context, ownerID string, d domain.Device) pipelineResult {
	ctx, span := o.tracer.Start(ctx, "correlation.device",
		trace.WithAttributes(attribute.String("device.id", d.ID), attribute.String("device.ip", d.IPAddress)))
	defer span.End()

	outcome := func(name string) {
		span.SetAttributes(attribute.String("outcome", name))
		telemetry.CorrelatedDevices.WithLabelValues(name).Inc()
	}

	if ctx.Err() != nil {
		outcome(outcomeCanceled)
		return pipelineResult{}
	}

	vendor, ok := o.identifier.Identify(ctx, d.MACAddress, d.DeviceName)
	if !ok || domain.IsUnknownVendor(vendor) {
		o.logger.Debug("Vendor not identified", "device", d.ID, "name", d.DeviceName)
		outcome(outcomeNoVendor)
		return pipelineResult{}
	}
	span.SetAttributes(attribute.String("vendor", vendor))

	records := o.source.FetchByVendor(ctx, vendor)
	if len(records) == 0 {
		outcome(outcomeNoVulnerabilities)
		return pipelineResult{}
	}

	retained := o.filter.FilterUnranked(records)
	if len(retained) == 0 {
		outcome(outcomeFilteredOut)
		return pipelineResult{}
	}

	annotated := o.suggester.Annotate(retained)
	drafts := make([]domain.AlertDraft, 0, len(annotated))
	for _, v := range annotated {
		drafts = append(drafts, domain.AlertDraft{
			OwnerID:         ownerID,
			DeviceID:        d.ID,
			DeviceName:      d.DeviceName,
			Vendor:          vendor,
			VulnerabilityID: v.ID,
			Severity:        v.Severity,
			Description:     v.Description,
			Suggestion:      v.Suggestion,
		})
	}

	outcome(outcomeCorrelated)
	return pipelineResult{
		result: &domain.CorrelationResult{
			DeviceID:        d.ID,
			DeviceName:      d.DeviceName,
			IPAddress:       d.IPAddress,
			Vendor:          vendor,
			Vulnerabilities: annotated,
		},
		drafts: drafts,
	}
}
