package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON exports the report to a file, creating parent directories as
// needed.
func WriteJSON(path string, data *ReportData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
