package event

import "errors"

var (
	ErrMalformedEvent     = errors.New("malformed event record")
	ErrInvalidKafkaConfig = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed   = errors.New("failed to fetch message from Kafka")
	ErrOpenInput          = errors.New("failed to open events file")
)
