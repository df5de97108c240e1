package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	ev, err := Parse([]byte(`{"entity_type":"northbound_vehicle","arrival_time":12.5}`))
	require.NoError(t, err)

	assert.Equal(t, "northbound_vehicle", ev.EntityType)
	assert.InDelta(t, 12.5, ev.ArrivalTime, 1e-12)
	assert.Nil(t, ev.ServiceDuration)
}

func TestParseEventWithServiceDuration(t *testing.T) {
	ev, err := Parse([]byte(`{"entity_type":"pedestrian_commuter","arrival_time":3,"service_duration":8.2}`))
	require.NoError(t, err)

	require.NotNil(t, ev.ServiceDuration)
	assert.InDelta(t, 8.2, *ev.ServiceDuration, 1e-12)
}

func TestParseEventNullServiceDuration(t *testing.T) {
	ev, err := Parse([]byte(`{"entity_type":"vehicle","arrival_time":3,"service_duration":null}`))
	require.NoError(t, err)
	assert.Nil(t, ev.ServiceDuration)
}

func TestParseEventRejectsBadRecords(t *testing.T) {
	cases := []string{
		`not json`,
		`{"arrival_time":3}`,
		`{"entity_type":"","arrival_time":3}`,
		`{"entity_type":"vehicle"}`,
		`{"entity_type":"vehicle","arrival_time":"soon"}`,
		`{"entity_type":"vehicle","arrival_time":-1}`,
		`{"entity_type":"vehicle","arrival_time":3,"service_duration":-2}`,
		`{"entity_type":"vehicle","arrival_time":3,"service_duration":"long"}`,
	}
	for _, raw := range cases {
		_, err := Parse([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedEvent, "record: %s", raw)
	}
}

func TestGroupByEntityOrdersArrivals(t *testing.T) {
	events := []Event{
		{EntityType: "a", ArrivalTime: 5},
		{EntityType: "b", ArrivalTime: 1},
		{EntityType: "a", ArrivalTime: 2},
		{EntityType: "b", ArrivalTime: 4},
	}
	grouped := GroupByEntity(events)

	require.Len(t, grouped, 2)
	assert.Equal(t, []float64{2, 5}, ArrivalTimes(grouped["a"]))
	assert.Equal(t, []float64{1, 4}, ArrivalTimes(grouped["b"]))
}

func TestInterArrivals(t *testing.T) {
	events := []Event{
		{EntityType: "a", ArrivalTime: 1},
		{EntityType: "a", ArrivalTime: 4},
		{EntityType: "a", ArrivalTime: 4.5},
	}
	assert.Equal(t, []float64{3, 0.5}, InterArrivals(events))
	assert.Nil(t, InterArrivals(events[:1]))
}

func TestServiceDurations(t *testing.T) {
	d1, d2 := 2.0, 7.5
	events := []Event{
		{EntityType: "a", ArrivalTime: 1, ServiceDuration: &d1},
		{EntityType: "a", ArrivalTime: 2},
		{EntityType: "a", ArrivalTime: 3, ServiceDuration: &d2},
	}
	assert.Equal(t, []float64{2.0, 7.5}, ServiceDurations(events))
}
