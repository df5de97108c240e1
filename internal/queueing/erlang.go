package queueing

import (
	"fmt"
	"math"
)

// ErlangC returns the probability that an arriving entity has to wait in an
// M/M/c system with offered load a = lambda/mu. It uses the Erlang-B
// recurrence rather than factorials, which stays numerically stable for
// large server counts. When a >= c the system is saturated and the
// probability of waiting is 1.
func ErlangC(c int, offered float64) (float64, error) {
	if c < 1 {
		return 0, fmt.Errorf("%w: server count must be at least 1, got %d", ErrInvalidInput, c)
	}
	if offered <= 0 || math.IsNaN(offered) || math.IsInf(offered, 0) {
		return 0, fmt.Errorf("%w: offered load must be positive, got %g", ErrInvalidInput, offered)
	}
	if offered >= float64(c) {
		return 1.0, nil
	}

	// Erlang-B recurrence: B(0)=1, B(k) = a*B(k-1) / (k + a*B(k-1)).
	b := 1.0
	for k := 1; k <= c; k++ {
		b = offered * b / (float64(k) + offered*b)
	}

	// Erlang-C from Erlang-B.
	cf := float64(c)
	return cf * b / (cf - offered*(1.0-b)), nil
}

// EvaluateMMC computes exact M/M/c metrics via Erlang-C. It is the secondary,
// more expensive path for the Poisson/exponential special case (both CVs
// equal 1); the CV fields of the inputs are ignored.
func EvaluateMMC(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	rho := in.Utilization()
	if rho >= 1.0-stabilityEpsilon {
		return unstableResult(rho), nil
	}

	probWait, err := ErlangC(in.Servers, in.Lambda/in.Mu)
	if err != nil {
		return Result{}, err
	}

	wq := probWait / (float64(in.Servers)*in.Mu - in.Lambda)
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

// ProbWaitExceeds estimates P(wait > t) assuming an exponential wait-time
// tail with mean wq. A zero or unstable mean wait collapses the estimate to
// the trivial bound.
func ProbWaitExceeds(wq, t float64) float64 {
	if math.IsInf(wq, 1) {
		return 1.0
	}
	if wq <= 0 {
		return 0.0
	}
	return math.Exp(-t / wq)
}
