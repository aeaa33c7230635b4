package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

// ExportService writes forensic reports to the export directory.
type ExportService struct {
	dir string
}

// NewExportService returns an ExportService writing into dir.
func NewExportService(dir string) *ExportService {
	return &ExportService{dir: dir}
}

// WriteReport writes logs as a CSV report named after now and returns its path.
func (s *ExportService) WriteReport(logs []models.LogRecord, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export directory: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("report_%s.csv", now.UTC().Format("20060102150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "ip", "timestamp", "path", "anomaly", "decoy_file"}); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, l := range logs {
		anomaly := "0"
		if l.Anomaly {
			anomaly = "1"
		}
		row := []string{strconv.FormatUint(uint64(l.ID), 10), l.IP, l.Timestamp.UTC().Format(time.RFC3339), l.Path, anomaly, l.DecoyFile}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}
	return path, nil
}
