package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// WriteReport renders the run report as indented JSON at path, creating
// parent directories as needed.
func WriteReport(path string, report *RunReport, logger *zap.Logger) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingReport, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWritingReport, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWritingReport, err)
	}
	logger.Sugar().Infow("Report written",
		"path", path,
		"entities", report.Summary.Entities,
		"bytes", len(data))
	return nil
}
