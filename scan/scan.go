package scan

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/logging"
	"go.uber.org/zap"
)

const ReportFileName = "scan.json"

type ScanOpts struct {
	// OutputPath is the directory the report is written to. Empty skips writing.
	OutputPath string
}

type Report struct {
	Root      string             `json:"root"`
	ScannedAt time.Time          `json:"scannedAt"`
	Files     []atlas.FileResult `json:"files"`
	Valid     int                `json:"valid"`
	Invalid   int                `json:"invalid"`
}

func ensureDirectory(path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(path, os.ModePerm)
	}
	return err
}

func writeReport(path string, report *Report) error {
	err := ensureDirectory(path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(path, ReportFileName), data, 0o644)
}

// Scan validates the configured layer library.
func Scan(ctx context.Context, config *atlas.Config, opts ScanOpts) (*Report, error) {
	root, err := filepath.Abs(config.GeoJSON.Path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := atlas.ValidateLibrary(ctx, root, atlas.ValidateOpts{
		Concurrency: config.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:      root,
		ScannedAt: start.UTC(),
		Files:     result.Files,
	}
	for _, f := range result.Files {
		if f.Error == "" {
			report.Valid++
		} else {
			report.Invalid++
		}
	}

	if opts.OutputPath != "" {
		err = writeReport(opts.OutputPath, report)
		if err != nil {
			return nil, err
		}
	}

	logging.L().Named("scan").Info("finished scanning layer library",
		zap.String("root", root),
		zap.Int("valid", report.Valid),
		zap.Int("invalid", report.Invalid),
		zap.Int64("ms", time.Since(start).Milliseconds()),
	)

	return report, nil
}

// LoadReport reads a report previously written to path.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(path, ReportFileName))
	if err != nil {
		return nil, err
	}

	var report Report
	err = json.Unmarshal(data, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
