package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// drainIdleTimeout bounds how long a drain waits for the next message
// before concluding the topic is exhausted. The analysis itself is a batch
// computation; Kafka is only a delivery channel for the normalized stream.
const drainIdleTimeout = 5 * time.Second

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// KafkaReader drains a topic of normalized event records using kafka-go.
type KafkaReader struct {
	reader *kafka.Reader
	logger *zap.Logger
}

// KafkaSettings identify the topic carrying the event stream.
type KafkaSettings struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader creates and configures a reader for the event topic.
func NewKafkaReader(cfg KafkaSettings, logger *zap.Logger) (*KafkaReader, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.String("group_id", cfg.GroupID),
		)
		return nil, ErrInvalidKafkaConfig
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
	})

	logger.Info("Kafka event reader created",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
	)
	return &KafkaReader{reader: r, logger: logger}, nil
}

// ReadAll fetches records until the topic goes idle for drainIdleTimeout or
// the context is cancelled, then returns everything collected. Malformed
// records are skipped with a warning.
func (r *KafkaReader) ReadAll(ctx context.Context) ([]Event, error) {
	sugar := r.logger.Sugar()
	defer func() {
		if err := r.reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	var events []Event
	skipped := 0
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, drainIdleTimeout)
		m, err := r.reader.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				// Topic idle: treat the stream as drained.
				break
			}
			if errors.Is(err, context.Canceled) {
				return nil, context.Canceled
			}
			return nil, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		ev, err := Parse(m.Value)
		if err != nil {
			skipped++
			sugar.Warnw("Skipping malformed event record",
				"offset", m.Offset,
				"error", err,
			)
			continue
		}
		events = append(events, ev)
	}

	sugar.Infow("Event topic drained",
		"events", len(events),
		"skipped", skipped,
	)
	return events, nil
}
