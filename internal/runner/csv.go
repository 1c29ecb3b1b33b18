package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// ResultRow is one outreach outcome written to the job's CSV artifact.
type ResultRow struct {
	Email   string `csv:"email"`
	Company string `csv:"company"`
	City    string `csv:"city"`
	Website string `csv:"website"`
	Status  string `csv:"status"`
}

// Row statuses.
const (
	StatusSent       = "sent"
	StatusSendFailed = "send_failed"
)

// writeResults writes the accumulated rows to path, creating parent
// directories as needed. An empty run still produces a header-only file.
func writeResults(path string, rows []ResultRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
