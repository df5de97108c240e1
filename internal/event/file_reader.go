package event

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FileReader loads a normalized event stream from a JSON-lines file, the
// usual hand-off format from the ingestion collaborator.
type FileReader struct {
	path   string
	logger *zap.Logger
}

// NewFileReader creates a reader for the given path. The file is opened
// lazily in ReadAll.
func NewFileReader(path string, logger *zap.Logger) *FileReader {
	return &FileReader{path: path, logger: logger}
}

// ReadAll reads every record in the file. Malformed lines are skipped with
// a warning rather than aborting the run; blank lines are ignored.
func (r *FileReader) ReadAll(ctx context.Context) ([]Event, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenInput, err)
	}
	defer f.Close()

	sugar := r.logger.Sugar()
	var events []Event
	skipped := 0
	line := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		ev, err := Parse(data)
		if err != nil {
			skipped++
			sugar.Warnw("Skipping malformed event record",
				"line", line,
				"error", err,
			)
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenInput, err)
	}

	sugar.Infow("Event file loaded",
		"path", r.path,
		"events", len(events),
		"skipped", skipped,
	)
	return events, nil
}
