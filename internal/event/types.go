// Package event defines the normalized observation stream handed over by
// the ingestion collaborator and the readers that load it. One record per
// detected entity: who arrived, when, and how long it occupied a server if
// that was observed.
package event

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Event is one normalized observation. ArrivalTime is seconds from the
// start of the observation session, non-decreasing within an entity type.
// ServiceDuration is present for pedestrian-like entities that occupy a
// crossing for a measurable time and nil for flow-through entities.
type Event struct {
	EntityType      string   `json:"entity_type"`
	ArrivalTime     float64  `json:"arrival_time"`
	ServiceDuration *float64 `json:"service_duration,omitempty"`
}

// Parse decodes a single JSON event record. It tolerates integer-encoded
// numbers and a null service duration, and rejects records missing the
// required fields.
func Parse(data []byte) (Event, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	entity, ok := raw["entity_type"].(string)
	if !ok || entity == "" {
		return Event{}, fmt.Errorf("%w: missing or empty entity_type", ErrMalformedEvent)
	}

	arrival, ok := asFloat64(raw["arrival_time"])
	if !ok {
		return Event{}, fmt.Errorf("%w: missing or non-numeric arrival_time", ErrMalformedEvent)
	}
	if arrival < 0 {
		return Event{}, fmt.Errorf("%w: negative arrival_time %g", ErrMalformedEvent, arrival)
	}

	ev := Event{EntityType: entity, ArrivalTime: arrival}

	if rawDur, exists := raw["service_duration"]; exists && rawDur != nil {
		dur, ok := asFloat64(rawDur)
		if !ok {
			return Event{}, fmt.Errorf("%w: non-numeric service_duration", ErrMalformedEvent)
		}
		if dur < 0 {
			return Event{}, fmt.Errorf("%w: negative service_duration %g", ErrMalformedEvent, dur)
		}
		ev.ServiceDuration = &dur
	}
	return ev, nil
}

// asFloat64 coerces the numeric types a loosely-typed decoder may produce.
func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// GroupByEntity buckets events per entity type, each bucket ordered by
// arrival time. The sort is defensive: the interface contract promises
// non-decreasing timestamps per entity, but a merge of ingestion sessions
// can interleave them.
func GroupByEntity(events []Event) map[string][]Event {
	grouped := make(map[string][]Event)
	for _, ev := range events {
		grouped[ev.EntityType] = append(grouped[ev.EntityType], ev)
	}
	for _, evs := range grouped {
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].ArrivalTime < evs[j].ArrivalTime
		})
	}
	return grouped
}

// ArrivalTimes extracts the arrival timestamps in order.
func ArrivalTimes(events []Event) []float64 {
	out := make([]float64, len(events))
	for i, ev := range events {
		out[i] = ev.ArrivalTime
	}
	return out
}

// InterArrivals returns the consecutive arrival-time differences, one fewer
// than the number of events.
func InterArrivals(events []Event) []float64 {
	if len(events) < 2 {
		return nil
	}
	out := make([]float64, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		out = append(out, events[i].ArrivalTime-events[i-1].ArrivalTime)
	}
	return out
}

// ServiceDurations returns the recorded service durations, skipping events
// that carry none.
func ServiceDurations(events []Event) []float64 {
	var out []float64
	for _, ev := range events {
		if ev.ServiceDuration != nil {
			out = append(out, *ev.ServiceDuration)
		}
	}
	return out
}
