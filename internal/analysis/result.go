package analysis

import (
	"time"

	"github.com/queuelens/queuelens/internal/capacity"
	"github.com/queuelens/queuelens/internal/fit"
	"github.com/queuelens/queuelens/internal/variability"
)

// Status describes how far an entity's analysis got.
type Status string

const (
	// StatusComputed means every stage produced a result.
	StatusComputed Status = "computed"
	// StatusDegraded means the headline metrics are present but one or more
	// stages had to be skipped or produced a partial result; Notes say which.
	StatusDegraded Status = "degraded"
	// StatusFailed means the stream could not be analyzed at all.
	StatusFailed Status = "failed"
)

// EntityResult is the full analysis of one entity stream. Optional sections
// are pointers so a skipped stage shows up as null in the report instead of
// a zero-valued struct that looks computed.
type EntityResult struct {
	Entity string   `json:"entity"`
	Status Status   `json:"status"`
	Notes  []string `json:"notes,omitempty"`

	Observations int     `json:"observations"`
	SpanSeconds  float64 `json:"spanSeconds"`

	ArrivalRate      float64 `json:"arrivalRatePerSecond"`
	MeanInterArrival float64 `json:"meanInterArrivalSeconds"`
	ArrivalCV        float64 `json:"arrivalCV"`

	ServiceRate      float64 `json:"serviceRatePerSecond"`
	MeanService      float64 `json:"meanServiceSeconds"`
	ServiceCV        float64 `json:"serviceCV"`
	ServiceDefaulted bool    `json:"serviceDefaulted"`

	VariabilityClass variability.Class          `json:"variabilityClass,omitempty"`
	Decomposition    *variability.Decomposition `json:"decomposition,omitempty"`
	Windows          []variability.Window       `json:"windows,omitempty"`

	ArrivalFits *fit.Report `json:"arrivalFits,omitempty"`
	ServiceFits *fit.Report `json:"serviceFits,omitempty"`

	Recommendation *capacity.Recommendation `json:"recommendation,omitempty"`
}

// RunSummary counts entity outcomes for the report header.
type RunSummary struct {
	Entities int `json:"entities"`
	Computed int `json:"computed"`
	Degraded int `json:"degraded"`
	Failed   int `json:"failed"`
}

// RunReport is the top-level analysis output, one entry per entity stream
// sorted by entity name.
type RunReport struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Summary     RunSummary     `json:"summary"`
	Entities    []EntityResult `json:"entities"`
}
