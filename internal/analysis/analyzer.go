// Package analysis orchestrates the per-entity pipeline: sample extraction,
// distribution fitting, variability analysis and capacity planning. Each
// entity stream is analyzed independently and in parallel; one stream's
// failure never blocks another's result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/queuelens/queuelens/internal/capacity"
	"github.com/queuelens/queuelens/internal/config"
	"github.com/queuelens/queuelens/internal/event"
	"github.com/queuelens/queuelens/internal/fit"
	"github.com/queuelens/queuelens/internal/stats"
	"github.com/queuelens/queuelens/internal/variability"
)

// Analyzer runs the full analysis for a batch of events.
type Analyzer struct {
	cfg     config.AnalysisConfig
	fitter  *fit.Fitter
	planner *capacity.Planner
	logger  *zap.Logger
}

// New wires a fitter and a capacity planner from the analysis configuration.
func New(cfg config.AnalysisConfig, logger *zap.Logger) (*Analyzer, error) {
	bands := make([]capacity.Band, 0, len(cfg.UtilizationBands))
	for _, b := range cfg.UtilizationBands {
		bands = append(bands, capacity.Band{Name: b.Name, Rho: b.Rho})
	}

	planner, err := capacity.NewPlanner(capacity.Config{
		TargetWait:           cfg.TargetWaitSeconds,
		MaxServers:           cfg.MaxServers,
		ImprovementThreshold: cfg.ImprovementThreshold,
		Bands:                bands,
	}, logger.Named("capacity"))
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		cfg:     cfg,
		fitter:  fit.NewFitter(logger.Named("fit")),
		planner: planner,
		logger:  logger.Named("analysis"),
	}, nil
}

// Run groups events by entity type and analyzes each stream concurrently.
// Entities are returned sorted by name so repeated runs over the same input
// produce identical reports.
func (a *Analyzer) Run(ctx context.Context, events []event.Event) (*RunReport, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	groups := event.GroupByEntity(events)
	a.logger.Sugar().Infow("Starting analysis run",
		"events", len(events), "entities", len(groups))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []EntityResult
	)
	for name, stream := range groups {
		wg.Add(1)
		go func(name string, stream []event.Event) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			res := a.analyzeEntity(name, stream)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(name, stream)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Entity < results[j].Entity })

	report := &RunReport{
		GeneratedAt: time.Now().UTC(),
		Entities:    results,
	}
	for _, res := range results {
		report.Summary.Entities++
		switch res.Status {
		case StatusComputed:
			report.Summary.Computed++
		case StatusDegraded:
			report.Summary.Degraded++
		case StatusFailed:
			report.Summary.Failed++
		}
		publishMetrics(res)
	}

	a.logger.Sugar().Infow("Analysis run finished",
		"computed", report.Summary.Computed,
		"degraded", report.Summary.Degraded,
		"failed", report.Summary.Failed)
	return report, nil
}

// analyzeEntity runs every stage for one stream. Stages that cannot run
// leave a note; only a stream too small or malformed to yield an arrival
// process at all is marked failed.
func (a *Analyzer) analyzeEntity(entity string, events []event.Event) EntityResult {
	log := a.logger.Sugar().With("entity", entity)
	res := EntityResult{Entity: entity, Status: StatusComputed, Observations: len(events)}

	degraded := false
	note := func(msg string) { res.Notes = append(res.Notes, msg) }
	degrade := func(msg string) {
		note(msg)
		degraded = true
	}
	fail := func(msg string) EntityResult {
		res.Status = StatusFailed
		note(msg)
		log.Warnw("Entity analysis failed", "reason", msg)
		return res
	}

	if len(events) < 2 {
		return fail("fewer than two arrivals; no arrival process to analyze")
	}

	arrivals := event.ArrivalTimes(events)
	res.SpanSeconds = arrivals[len(arrivals)-1] - arrivals[0]
	if res.SpanSeconds <= 0 {
		return fail("all arrivals share one timestamp; observation span is zero")
	}

	arrivalSet, err := stats.NewSampleSet(event.InterArrivals(events))
	if err != nil {
		return fail(fmt.Sprintf("inter-arrival samples rejected: %v", err))
	}
	cva, err := arrivalSet.CV()
	if err != nil {
		return fail("too few inter-arrivals for a coefficient of variation")
	}
	res.MeanInterArrival = arrivalSet.Mean()
	res.ArrivalRate = 1 / arrivalSet.Mean()
	res.ArrivalCV = cva
	res.VariabilityClass = variability.Classify(cva)

	switch rep, err := a.fitter.Fit(arrivalSet); {
	case err == nil:
		res.ArrivalFits = &rep
		if rep.Degraded() {
			degrade("some arrival distribution families were omitted; see fit failures")
		}
	case errors.Is(err, fit.ErrInsufficientData):
		degrade("too few positive inter-arrivals to fit distributions")
	default:
		return fail(fmt.Sprintf("arrival distribution fitting failed: %v", err))
	}

	a.resolveService(&res, events, degrade, note)

	if d, err := variability.Decompose(cva, res.ServiceCV); err == nil {
		res.Decomposition = &d
	} else {
		degrade(fmt.Sprintf("variability decomposition unavailable: %v", err))
	}

	if ws, err := variability.WindowedCV(arrivals, a.cfg.WindowWidthSeconds); err == nil {
		res.Windows = ws
	} else {
		degrade(fmt.Sprintf("windowed arrival CV unavailable: %v", err))
	}

	switch rec, err := a.planner.Recommend(entity, res.ArrivalRate, res.ServiceRate, cva, res.ServiceCV); {
	case err == nil:
		res.Recommendation = &rec
	case errors.Is(err, capacity.ErrInfeasible):
		res.Recommendation = &rec
		note("wait target infeasible within the server search bound")
	default:
		return fail(fmt.Sprintf("capacity planning failed: %v", err))
	}

	if degraded {
		res.Status = StatusDegraded
	}
	log.Debugw("Entity analyzed",
		"status", res.Status,
		"arrivalRate", res.ArrivalRate,
		"arrivalCV", res.ArrivalCV,
		"serviceDefaulted", res.ServiceDefaulted)
	return res
}

// resolveService derives the service-time profile from observed durations,
// falling back to the configured defaults for streams that carry none
// (flow-through traffic). The fallback is a documented assumption, not a
// degradation: it leaves a note but the status stays computed.
func (a *Analyzer) resolveService(res *EntityResult, events []event.Event, degrade, note func(string)) {
	useDefault := func(why string) {
		res.ServiceDefaulted = true
		res.MeanService = a.cfg.DefaultServiceTimeSeconds
		res.ServiceRate = 1 / a.cfg.DefaultServiceTimeSeconds
		res.ServiceCV = a.cfg.DefaultServiceCV
		note("service profile defaulted: " + why)
	}

	durations := event.ServiceDurations(events)
	if len(durations) < 2 {
		useDefault("fewer than two service observations")
		return
	}
	serviceSet, err := stats.NewSampleSet(durations)
	if err != nil || serviceSet.Mean() <= 0 {
		useDefault("service observations unusable")
		return
	}

	res.MeanService = serviceSet.Mean()
	res.ServiceRate = 1 / serviceSet.Mean()
	cvs, err := serviceSet.CV()
	if err != nil {
		res.ServiceCV = a.cfg.DefaultServiceCV
		degrade("service CV not computable; using the configured default")
	} else {
		res.ServiceCV = cvs
	}

	switch rep, err := a.fitter.Fit(serviceSet); {
	case err == nil:
		res.ServiceFits = &rep
		if rep.Degraded() {
			degrade("some service distribution families were omitted; see fit failures")
		}
	case errors.Is(err, fit.ErrInsufficientData):
		degrade("too few positive service observations to fit distributions")
	default:
		degrade(fmt.Sprintf("service distribution fitting failed: %v", err))
	}
}
