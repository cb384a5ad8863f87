package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/directional-signals/internal/features"
)

const (
	seriesSheet  = "Series"
	signalsSheet = "Signals"
)

// ExcelStyles holds the workbook cell styles
type ExcelStyles struct {
	Header int
	Time   int
	Number int
	Long   int
	Short  int
}

// WriteSeriesXLSX writes the annotated series and the emitted signals to
// a workbook at path. Long bars are green and short bars red in the
// signal column.
func WriteSeriesXLSX(series *features.AnnotatedSeries, signals []features.Signal, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), seriesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(signalsSheet); err != nil {
		return err
	}

	styles, err := createExcelStyles(fx)
	if err != nil {
		return err
	}
	if err := writeSeriesSheet(fx, series, styles); err != nil {
		return err
	}
	if err := writeSignalsSheet(fx, signals, styles); err != nil {
		return err
	}
	return fx.SaveAs(path)
}

func createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error
	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.Header, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	timeFormat := "yyyy-mm-dd hh:mm:ss"
	styles.Time, err = fx.NewStyle(&excelize.Style{CustomNumFmt: &timeFormat, Border: border})
	if err != nil {
		return styles, err
	}

	numberFormat := "0.0000"
	styles.Number, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &numberFormat,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	if err != nil {
		return styles, err
	}

	styles.Long, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "006100"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.Short, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "9C0006"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	return styles, err
}

func writeSeriesSheet(fx *excelize.File, series *features.AnnotatedSeries, styles ExcelStyles) error {
	names := series.ColumnNames()
	columns, err := seriesColumns(series, names)
	if err != nil {
		return err
	}

	header := make([]interface{}, 0, len(names)+1)
	header = append(header, "timestamp")
	for _, n := range names {
		header = append(header, n)
	}
	if err := writeHeader(fx, seriesSheet, header, styles); err != nil {
		return err
	}

	signalCol := -1
	for j, n := range names {
		if n == features.ColumnSignal {
			signalCol = j
		}
	}

	timestamps := series.Snapshot().Timestamps()
	row := make([]interface{}, len(names)+1)
	for i := 0; i < series.Len(); i++ {
		row[0] = timestamps[i].UTC()
		for j := range names {
			row[j+1] = cellValue(columns[j][i])
		}
		r := i + 2
		if err := setRow(fx, seriesSheet, r, row); err != nil {
			return err
		}
		if err := styleRange(fx, seriesSheet, 1, r, 1, r, styles.Time); err != nil {
			return err
		}
		if err := styleRange(fx, seriesSheet, 2, r, len(names)+1, r, styles.Number); err != nil {
			return err
		}
		if signalCol >= 0 {
			col := signalCol + 2
			switch features.Direction(int(columns[signalCol][i])) {
			case features.Long:
				err = styleRange(fx, seriesSheet, col, r, col, r, styles.Long)
			case features.Short:
				err = styleRange(fx, seriesSheet, col, r, col, r, styles.Short)
			}
			if err != nil {
				return err
			}
		}
	}

	if err := fx.SetColWidth(seriesSheet, "A", "A", 20); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(names) + 1)
	if err != nil {
		return err
	}
	if err := fx.SetColWidth(seriesSheet, "B", last, 14); err != nil {
		return err
	}
	return freezeHeader(fx, seriesSheet)
}

func writeSignalsSheet(fx *excelize.File, signals []features.Signal, styles ExcelStyles) error {
	header := []interface{}{"timestamp", "signal_name", "trading_pair", "category", "side", "intensity", "value"}
	if err := writeHeader(fx, signalsSheet, header, styles); err != nil {
		return err
	}

	for i := range signals {
		s := &signals[i]
		r := i + 2
		row := []interface{}{s.Timestamp.UTC(), s.SignalName, s.TradingPair, s.Category, s.Direction().String(), s.Intensity(), s.Value}
		if err := setRow(fx, signalsSheet, r, row); err != nil {
			return err
		}
		if err := styleRange(fx, signalsSheet, 1, r, 1, r, styles.Time); err != nil {
			return err
		}
		side := styles.Long
		if s.Direction() == features.Short {
			side = styles.Short
		}
		if err := styleRange(fx, signalsSheet, 5, r, 5, r, side); err != nil {
			return err
		}
		if err := styleRange(fx, signalsSheet, 6, r, 7, r, styles.Number); err != nil {
			return err
		}
	}

	if err := fx.SetColWidth(signalsSheet, "A", "A", 20); err != nil {
		return err
	}
	if err := fx.SetColWidth(signalsSheet, "B", "B", 28); err != nil {
		return err
	}
	return freezeHeader(fx, signalsSheet)
}

func writeHeader(fx *excelize.File, sheet string, header []interface{}, styles ExcelStyles) error {
	if err := setRow(fx, sheet, 1, header); err != nil {
		return err
	}
	return styleRange(fx, sheet, 1, 1, len(header), 1, styles.Header)
}

func setRow(fx *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return fx.SetSheetRow(sheet, cell, &values)
}

func styleRange(fx *excelize.File, sheet string, col1, row1, col2, row2, style int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, from, to, style)
}

func freezeHeader(fx *excelize.File, sheet string) error {
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue leaves undefined values blank
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
