package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

// FeatureReport is the JSON document written by the replay command
type FeatureReport struct {
	Feature *features.Feature `json:"feature"`
	Signals []features.Signal `json:"signals"`
}

// WriteReportJSON writes the final feature and every emitted signal to path
func WriteReportJSON(report FeatureReport, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := EncodeReportJSON(f, report); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeReportJSON writes report as indented JSON
func EncodeReportJSON(w io.Writer, report FeatureReport) error {
	if report.Signals == nil {
		report.Signals = []features.Signal{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
