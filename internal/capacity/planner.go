// Package capacity searches over candidate server counts for the minimum
// capacity meeting a wait-time target, and builds the utilization-band
// scenario table used for what-if comparisons.
package capacity

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/queuelens/queuelens/internal/queueing"
)

const (
	DefaultTargetWait           = 30.0 // seconds
	DefaultMaxServers           = 20
	DefaultImprovementThreshold = 0.05

	// markovianTolerance bounds how far each CV may sit from 1 before the
	// exact M/M/c cross-check stops being meaningful.
	markovianTolerance = 0.05
)

// Band is one utilization target for scenario comparison.
type Band struct {
	Name string  `json:"name"`
	Rho  float64 `json:"rho"`
}

// DefaultBands mirror the minimum/conservative/optimal/safe planning bands.
func DefaultBands() []Band {
	return []Band{
		{Name: "minimum", Rho: 0.90},
		{Name: "conservative", Rho: 0.85},
		{Name: "optimal", Rho: 0.75},
		{Name: "safe", Rho: 0.60},
	}
}

// Config carries the planner's targets and bounds. It is passed in
// explicitly so repeated runs with different targets share no state.
type Config struct {
	// TargetWait is the acceptable mean wait in queue, seconds.
	TargetWait float64
	// MaxServers bounds the search and guarantees termination.
	MaxServers int
	// ImprovementThreshold is the relative W_q gain below which adding a
	// server is considered diminishing returns.
	ImprovementThreshold float64
	Bands                []Band
}

// DefaultConfig returns the planner defaults.
func DefaultConfig() Config {
	return Config{
		TargetWait:           DefaultTargetWait,
		MaxServers:           DefaultMaxServers,
		ImprovementThreshold: DefaultImprovementThreshold,
		Bands:                DefaultBands(),
	}
}

func (c Config) validate() error {
	if c.TargetWait <= 0 {
		return fmt.Errorf("%w: target wait must be positive, got %g", ErrInvalidInput, c.TargetWait)
	}
	if c.MaxServers < 1 {
		return fmt.Errorf("%w: max servers must be at least 1, got %d", ErrInvalidInput, c.MaxServers)
	}
	if c.ImprovementThreshold < 0 || c.ImprovementThreshold >= 1 {
		return fmt.Errorf("%w: improvement threshold must be in [0,1), got %g", ErrInvalidInput, c.ImprovementThreshold)
	}
	for _, b := range c.Bands {
		if b.Rho <= 0 || b.Rho >= 1 {
			return fmt.Errorf("%w: band %q utilization must be in (0,1), got %g", ErrInvalidInput, b.Name, b.Rho)
		}
	}
	return nil
}

// Candidate is one evaluated server count in the search table.
type Candidate struct {
	Servers int             `json:"servers"`
	Result  queueing.Result `json:"result"`
	// MeetsTarget means stable and W_q within the configured target.
	MeetsTarget bool `json:"meetsTarget"`
	// RelativeImprovement is the fractional W_q reduction over the previous
	// candidate; zero for the first stable one.
	RelativeImprovement float64 `json:"relativeImprovement"`
}

// Scenario is one utilization-band what-if entry.
type Scenario struct {
	Band    Band            `json:"band"`
	Servers int             `json:"servers"`
	Result  queueing.Result `json:"result"`
}

// Recommendation is the outcome of one planning run for one entity stream.
// The full candidate table is retained so reports can compare scenarios
// without re-querying the engine.
type Recommendation struct {
	Entity   string          `json:"entity"`
	Servers  int             `json:"servers"`
	Result   queueing.Result `json:"result"`
	Feasible bool            `json:"feasible"`
	// DiminishingReturnsAt is the first server count whose W_q gain over its
	// predecessor fell below the configured threshold; 0 if never reached
	// within the search bound.
	DiminishingReturnsAt int         `json:"diminishingReturnsAt"`
	Candidates           []Candidate `json:"candidates"`
	Scenarios            []Scenario  `json:"scenarios"`
	// ProbWaitExceedsTarget is P(wait > TargetWait) at the chosen server
	// count, assuming an exponential wait-time tail.
	ProbWaitExceedsTarget float64 `json:"probWaitExceedsTarget"`
	// ExactMMC carries the exact M/M/c metrics at the chosen server count
	// when both CVs are close to 1, as a cross-check on the approximation.
	ExactMMC *queueing.Result `json:"exactMMC,omitempty"`
}

// Planner runs bounded capacity searches against the queueing engine.
type Planner struct {
	cfg    Config
	logger *zap.Logger
}

// NewPlanner validates the configuration and returns a planner.
func NewPlanner(cfg Config, logger *zap.Logger) (*Planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = DefaultBands()
	}
	return &Planner{cfg: cfg, logger: logger}, nil
}

// Recommend evaluates server counts 1..MaxServers and selects the smallest
// stable count whose W_q meets the target. The diminishing-returns policy
// is explicit: once a count meets the target, larger counts are never
// preferred, and the point where an extra server stops paying for itself is
// recorded for the report. If no count within the bound meets the target
// the recommendation carries the best achieved result, Feasible=false, and
// ErrInfeasible; an unmet maximum is never passed off as success.
func (p *Planner) Recommend(entity string, lambda, mu, cvArrival, cvService float64) (Recommendation, error) {
	rec := Recommendation{Entity: entity, Feasible: false}

	prevWait := math.NaN()
	chosen := 0
	bestStable := 0
	for c := 1; c <= p.cfg.MaxServers; c++ {
		res, err := queueing.Evaluate(queueing.Inputs{
			Lambda:    lambda,
			Mu:        mu,
			CVArrival: cvArrival,
			CVService: cvService,
			Servers:   c,
		})
		if err != nil {
			return Recommendation{}, err
		}

		cand := Candidate{
			Servers:     c,
			Result:      res,
			MeetsTarget: !res.Unstable && res.WaitInQueue <= p.cfg.TargetWait,
		}
		if !res.Unstable {
			if !math.IsNaN(prevWait) && prevWait > 0 {
				cand.RelativeImprovement = (prevWait - res.WaitInQueue) / prevWait
				if rec.DiminishingReturnsAt == 0 && cand.RelativeImprovement < p.cfg.ImprovementThreshold {
					rec.DiminishingReturnsAt = c
				}
			}
			prevWait = res.WaitInQueue
			bestStable = c
		}
		rec.Candidates = append(rec.Candidates, cand)

		if chosen == 0 && cand.MeetsTarget {
			chosen = c
		}
	}

	rec.Scenarios = p.scenarios(lambda, mu, cvArrival, cvService)

	if chosen > 0 {
		rec.Servers = chosen
		rec.Result = rec.Candidates[chosen-1].Result
		rec.Feasible = true
		p.annotate(&rec, lambda, mu, cvArrival, cvService)
		p.logger.Debug("Capacity recommendation",
			zap.String("entity", entity),
			zap.Int("servers", chosen),
			zap.Float64("wait_in_queue", rec.Result.WaitInQueue),
		)
		return rec, nil
	}

	// Infeasible: report the best we achieved within the bound.
	if bestStable > 0 {
		rec.Servers = bestStable
		rec.Result = rec.Candidates[bestStable-1].Result
	} else {
		rec.Servers = p.cfg.MaxServers
		rec.Result = rec.Candidates[p.cfg.MaxServers-1].Result
	}
	p.annotate(&rec, lambda, mu, cvArrival, cvService)
	p.logger.Warn("Wait target infeasible within server bound",
		zap.String("entity", entity),
		zap.Int("max_servers", p.cfg.MaxServers),
		zap.Float64("target_wait", p.cfg.TargetWait),
		zap.Float64("best_wait", rec.Result.WaitInQueue),
	)
	return rec, fmt.Errorf("%w: entity %q, best W_q %g s at c=%d",
		ErrInfeasible, entity, rec.Result.WaitInQueue, rec.Servers)
}

// annotate fills the derived report entries once the headline result is
// chosen: the service-level exceedance probability against the target, and
// the exact M/M/c metrics where the Markovian model applies.
func (p *Planner) annotate(rec *Recommendation, lambda, mu, cvArrival, cvService float64) {
	rec.ProbWaitExceedsTarget = queueing.ProbWaitExceeds(rec.Result.WaitInQueue, p.cfg.TargetWait)

	if math.Abs(cvArrival-1.0) > markovianTolerance || math.Abs(cvService-1.0) > markovianTolerance {
		return
	}
	exact, err := queueing.EvaluateMMC(queueing.Inputs{
		Lambda:    lambda,
		Mu:        mu,
		CVArrival: cvArrival,
		CVService: cvService,
		Servers:   rec.Servers,
	})
	if err != nil {
		return
	}
	rec.ExactMMC = &exact
}

// scenarios sizes each utilization band directly: the minimal c with
// rho <= band target is ceil(lambda / (mu * rho)).
func (p *Planner) scenarios(lambda, mu, cvArrival, cvService float64) []Scenario {
	out := make([]Scenario, 0, len(p.cfg.Bands))
	for _, band := range p.cfg.Bands {
		c := int(math.Ceil(lambda / (mu * band.Rho)))
		if c < 1 {
			c = 1
		}
		res, err := queueing.Evaluate(queueing.Inputs{
			Lambda:    lambda,
			Mu:        mu,
			CVArrival: cvArrival,
			CVService: cvService,
			Servers:   c,
		})
		if err != nil {
			continue
		}
		out = append(out, Scenario{Band: band, Servers: c, Result: res})
	}
	return out
}
