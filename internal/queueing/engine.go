// Package queueing computes multi-server queueing metrics for general
// (non-Poisson, non-exponential) arrival and service processes.
//
// The primary path is Kingman's VUT approximation with the service rate
// scaled by the server count. For c > 1 this is an approximation of the
// multi-server single-queue system, reasonable at moderate utilization; it
// is not the exact Erlang-C result. EvaluateMMC provides the exact M/M/c
// metrics for the special case where both CVs equal 1.
package queueing

import (
	"encoding/json"
	"fmt"
	"math"
)

// stabilityEpsilon guards the rho/(1-rho) term: a utilization within this
// distance of 1.0 is treated as unstable rather than risking a near-singular
// division producing a misleadingly large finite wait.
const stabilityEpsilon = 1e-9

// littleLawTolerance is the relative tolerance for the L = lambda*W
// self-check applied to every stable result.
const littleLawTolerance = 1e-9

// Inputs holds the parameters of one queueing evaluation.
type Inputs struct {
	Lambda    float64 // arrival rate, entities per second
	Mu        float64 // service rate per server, entities per second
	CVArrival float64 // coefficient of variation of inter-arrival times
	CVService float64 // coefficient of variation of service times
	Servers   int     // parallel server count, c >= 1
}

// Validate fails fast on inputs that indicate a caller defect rather than a
// data characteristic. An overloaded system (rho >= 1) is NOT invalid.
func (in Inputs) Validate() error {
	if in.Lambda <= 0 || math.IsNaN(in.Lambda) || math.IsInf(in.Lambda, 0) {
		return fmt.Errorf("%w: arrival rate must be positive, got %g", ErrInvalidInput, in.Lambda)
	}
	if in.Mu <= 0 || math.IsNaN(in.Mu) || math.IsInf(in.Mu, 0) {
		return fmt.Errorf("%w: service rate must be positive, got %g", ErrInvalidInput, in.Mu)
	}
	if in.Servers < 1 {
		return fmt.Errorf("%w: server count must be at least 1, got %d", ErrInvalidInput, in.Servers)
	}
	if in.CVArrival < 0 || math.IsNaN(in.CVArrival) {
		return fmt.Errorf("%w: arrival CV must be non-negative, got %g", ErrInvalidInput, in.CVArrival)
	}
	if in.CVService < 0 || math.IsNaN(in.CVService) {
		return fmt.Errorf("%w: service CV must be non-negative, got %g", ErrInvalidInput, in.CVService)
	}
	return nil
}

// Utilization returns rho = lambda / (c * mu).
func (in Inputs) Utilization() float64 {
	return in.Lambda / (float64(in.Servers) * in.Mu)
}

// Result holds the computed metrics for one evaluation. When Unstable is
// true the wait and length metrics are +Inf; they are never reported as a
// large-but-finite number.
type Result struct {
	Utilization  float64 `json:"utilization"`
	WaitInQueue  float64 `json:"waitInQueueSeconds"`
	WaitInSystem float64 `json:"waitInSystemSeconds"`
	QueueLength  float64 `json:"queueLength"`
	SystemLength float64 `json:"systemLength"`
	Unstable     bool    `json:"unstable"`
}

// MarshalJSON renders unstable (infinite) wait and length metrics as null.
// encoding/json refuses +Inf, and a report entry with unstable=true plus
// null metrics is clearer than any finite stand-in.
func (r Result) MarshalJSON() ([]byte, error) {
	finite := func(v float64) *float64 {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return &v
	}
	type alias struct {
		Utilization  float64  `json:"utilization"`
		WaitInQueue  *float64 `json:"waitInQueueSeconds"`
		WaitInSystem *float64 `json:"waitInSystemSeconds"`
		QueueLength  *float64 `json:"queueLength"`
		SystemLength *float64 `json:"systemLength"`
		Unstable     bool     `json:"unstable"`
	}
	return json.Marshal(alias{
		Utilization:  r.Utilization,
		WaitInQueue:  finite(r.WaitInQueue),
		WaitInSystem: finite(r.WaitInSystem),
		QueueLength:  finite(r.QueueLength),
		SystemLength: finite(r.SystemLength),
		Unstable:     r.Unstable,
	})
}

// Evaluate computes utilization, wait and queue-length metrics using
// Kingman's VUT approximation:
//
//	W_q = (rho/(1-rho)) * ((CV_a^2 + CV_s^2)/2) * (1/(c*mu))
//
// with W = W_q + 1/mu and the lengths via Little's Law. The Little's Law
// identities are verified on every stable result; a violation indicates a
// defect in this package, not in the inputs.
func Evaluate(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	rho := in.Utilization()
	if rho >= 1.0-stabilityEpsilon {
		return unstableResult(rho), nil
	}

	variability := (in.CVArrival*in.CVArrival + in.CVService*in.CVService) / 2.0
	congestion := rho / (1.0 - rho)
	wq := congestion * variability / (float64(in.Servers) * in.Mu)

	res := Result{
		Utilization:  rho,
		WaitInQueue:  wq,
		WaitInSystem: wq + 1.0/in.Mu,
		QueueLength:  in.Lambda * wq,
		SystemLength: in.Lambda * (wq + 1.0/in.Mu),
	}
	if err := verifyLittlesLaw(in.Lambda, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// unstableResult is the defined result state for rho >= 1: infinite waits
// and queue lengths, flagged explicitly.
func unstableResult(rho float64) Result {
	return Result{
		Utilization:  rho,
		WaitInQueue:  math.Inf(1),
		WaitInSystem: math.Inf(1),
		QueueLength:  math.Inf(1),
		SystemLength: math.Inf(1),
		Unstable:     true,
	}
}

// verifyLittlesLaw checks L = lambda*W and L_q = lambda*W_q to relative
// tolerance. It is a mandatory self-check on every stable result.
func verifyLittlesLaw(lambda float64, res Result) error {
	if !withinRelative(res.SystemLength, lambda*res.WaitInSystem, littleLawTolerance) {
		return fmt.Errorf("%w: L=%g, lambda*W=%g", ErrLittleLawViolation, res.SystemLength, lambda*res.WaitInSystem)
	}
	if !withinRelative(res.QueueLength, lambda*res.WaitInQueue, littleLawTolerance) {
		return fmt.Errorf("%w: Lq=%g, lambda*Wq=%g", ErrLittleLawViolation, res.QueueLength, lambda*res.WaitInQueue)
	}
	return nil
}

func withinRelative(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	if diff == 0 {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return diff/scale <= tol
}
