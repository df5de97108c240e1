package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/segmentio/kafka-go"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	broker  = flag.String("broker", "", "Kafka broker address; empty writes JSON lines to -out instead")
	topic   = flag.String("topic", "queue-events", "Kafka topic for generated events")
	out     = flag.String("out", "", "Output file for JSON lines; empty writes to stdout")
	perLane = flag.Int("count", 500, "Number of events to generate per entity stream")
	seed    = flag.Uint64("seed", 42, "PRNG seed; the same seed reproduces the same stream")
)

// queueEvent matches the record shape the analyzer ingests.
type queueEvent struct {
	EntityType      string   `json:"entity_type"`
	ArrivalTime     float64  `json:"arrival_time"`
	ServiceDuration *float64 `json:"service_duration,omitempty"`
}

func main() {
	flag.Parse()

	src := rand.NewPCG(*seed, *seed)
	events := generateEvents(src, *perLane)
	log.Printf("Generated %d events across sample entity streams (seed=%d)", len(events), *seed)

	if *broker != "" {
		produceToKafka(events)
		return
	}
	if err := writeLines(events); err != nil {
		log.Fatalf("Error writing events: %v", err)
	}
}

// generateEvents draws a few contrasting streams: a moderately variable
// pedestrian flow with lognormal crossing times, a bursty vehicle flow with
// no observable service times, and a smooth cyclist flow.
func generateEvents(src rand.Source, n int) []queueEvent {
	pedGap := distuv.Exponential{Rate: 0.8, Src: src}
	pedService := distuv.LogNormal{Mu: -0.2, Sigma: 0.6, Src: src}
	vehGap := distuv.Weibull{K: 0.7, Lambda: 2.0, Src: src}
	cycGap := distuv.Gamma{Alpha: 2.5, Beta: 1.5, Src: src}
	cycService := distuv.Exponential{Rate: 1.2, Src: src}

	streams := []struct {
		name    string
		gap     func() float64
		service func() *float64
	}{
		{
			name: "pedestrian",
			gap:  pedGap.Rand,
			service: func() *float64 {
				d := pedService.Rand()
				return &d
			},
		},
		{
			name:    "vehicle",
			gap:     vehGap.Rand,
			service: func() *float64 { return nil },
		},
		{
			name: "cyclist",
			gap:  cycGap.Rand,
			service: func() *float64 {
				d := cycService.Rand()
				return &d
			},
		},
	}

	var events []queueEvent
	for _, s := range streams {
		t := 0.0
		for i := 0; i < n; i++ {
			t += s.gap()
			events = append(events, queueEvent{
				EntityType:      s.name,
				ArrivalTime:     t,
				ServiceDuration: s.service(),
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ArrivalTime < events[j].ArrivalTime })
	return events
}

// writeLines emits one JSON record per line, the format the file reader
// consumes.
func writeLines(events []queueEvent) error {
	dst := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	w := bufio.NewWriter(dst)
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if *out != "" {
		log.Printf("Wrote %d events to %s", len(events), *out)
	}
	return nil
}

func produceToKafka(events []queueEvent) {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(*broker),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatalf("Error closing kafka writer: %v", err)
		}
	}()
	log.Printf("Producing %d events to topic: %s on broker: %s", len(events), *topic, *broker)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping producer...")
		cancel()
	}()

	const batchSize = 500
	for start := 0; start < len(events); start += batchSize {
		end := start + batchSize
		if end > len(events) {
			end = len(events)
		}

		msgs := make([]kafka.Message, 0, end-start)
		for _, ev := range events[start:end] {
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error marshalling event: %v", err)
				continue
			}
			msgs = append(msgs, kafka.Message{Value: data})
		}

		if err := writer.WriteMessages(ctx, msgs...); err != nil {
			if ctx.Err() != nil {
				log.Println("Context cancelled, exiting produce loop.")
				return
			}
			log.Fatalf("Error writing messages: %v", err)
		}
		log.Printf("Produced batch %d..%d", start, end-1)
	}
}
