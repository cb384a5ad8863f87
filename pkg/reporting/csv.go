package reporting

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

// WriteSeriesCSV writes every row of series with its input, derived and
// signal columns. Undefined values are left empty. A path ending in .xlsx
// is written as a workbook instead.
func WriteSeriesCSV(series *features.AnnotatedSeries, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteSeriesXLSX(series, nil, path)
	}
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := series.ColumnNames()
	columns, err := seriesColumns(series, names)
	if err != nil {
		return err
	}

	if err := w.Write(append([]string{"timestamp"}, names...)); err != nil {
		return err
	}
	timestamps := series.Snapshot().Timestamps()
	record := make([]string, len(names)+1)
	for i := 0; i < series.Len(); i++ {
		record[0] = timestamps[i].UTC().Format(timeLayout)
		for j := range names {
			record[j+1] = formatCell(columns[j][i])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func seriesColumns(series *features.AnnotatedSeries, names []string) ([][]float64, error) {
	columns := make([][]float64, len(names))
	for j, name := range names {
		values, err := series.Column(name)
		if err != nil {
			return nil, err
		}
		columns[j] = values
	}
	return columns, nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
