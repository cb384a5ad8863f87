package reporting

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/directional-signals/internal/features"
	"github.com/ducminhle1904/directional-signals/pkg/config"
)

const timeLayout = "2006-01-02 15:04:05"

// ConsoleReporter renders features, signals and configuration as tables
type ConsoleReporter struct {
	out   io.Writer
	style table.Style
}

// NewConsoleReporter writes to w, or stdout when w is nil
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{out: w, style: table.StyleRounded}
}

func (r *ConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(r.style)
	return t
}

// PrintFeature prints the value map and info of one feature
func (r *ConsoleReporter) PrintFeature(f *features.Feature) {
	t := r.newTable(fmt.Sprintf("%s %s", strings.ToUpper(f.FeatureName), f.TradingPair))
	t.AppendRows([]table.Row{
		{"🏪 Connector", f.ConnectorName},
		{"⏰ Bar", f.Timestamp.UTC().Format(timeLayout)},
		{"🎯 Direction", f.Direction().String()},
	})
	t.AppendSeparator()
	for _, key := range sortedKeys(f.Value) {
		t.AppendRow(table.Row{key, formatValue(f.Value[key])})
	}
	if len(f.Info) > 0 {
		t.AppendSeparator()
		keys := make([]string, 0, len(f.Info))
		for k := range f.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AppendRow(table.Row{k, fmt.Sprint(f.Info[k])})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, Align: text.AlignRight},
	})
	t.Render()
}

// PrintSignals prints signals in the order given
func (r *ConsoleReporter) PrintSignals(signals []features.Signal) {
	t := r.newTable("SIGNALS")
	t.AppendHeader(table.Row{"Time", "Signal", "Pair", "Side", "Intensity", "Value"})
	for i := range signals {
		s := &signals[i]
		t.AppendRow(table.Row{
			s.Timestamp.UTC().Format(timeLayout),
			s.SignalName,
			s.TradingPair,
			strings.ToUpper(s.Direction().String()),
			fmt.Sprintf("%.2f", s.Intensity()),
			fmt.Sprintf("%+.4f", s.Value),
		})
	}
	if len(signals) == 0 {
		t.AppendRow(table.Row{"-", "no signals", "", "", "", ""})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}

// PrintControllers prints the startup table of configured controllers
func (r *ConsoleReporter) PrintControllers(controllers []config.ControllerConfig) {
	t := r.newTable("CONTROLLERS")
	t.AppendHeader(table.Row{"ID", "Kind", "Market", "Candles", "Interval", "Records", "Min Intensity"})
	for i := range controllers {
		c := &controllers[i]
		t.AppendRow(table.Row{
			c.ID,
			c.Kind(),
			c.ConnectorName + " " + c.TradingPair,
			c.CandlesConnector + " " + c.CandlesTradingPair,
			c.Interval(),
			c.MaxRecords,
			fmt.Sprintf("%.2f", c.MinIntensity),
		})
	}
	t.Render()
}

// PrintPrompts prints the operator prompts of an indicator family
func (r *ConsoleReporter) PrintPrompts(kind config.Kind) {
	t := r.newTable(fmt.Sprintf("%s PARAMETERS", strings.ToUpper(string(kind))))
	t.AppendHeader(table.Row{"Field", "Description", "Asked On New", "Prompt"})
	for _, p := range config.PromptsFor(kind, false) {
		onNew := ""
		if p.PromptOnNew {
			onNew = "✓"
		}
		t.AppendRow(table.Row{p.Field, p.Description, onNew, strings.TrimSpace(p.Prompt)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, WidthMax: 50},
	})
	t.Render()
}

// PrintReplaySummary prints the result of a replay
func (r *ConsoleReporter) PrintReplaySummary(s ReplaySummary) {
	t := r.newTable("REPLAY SUMMARY")
	t.AppendRows([]table.Row{
		{"📊 Feature", s.Feature},
		{"🏷️ Signal", s.SignalName},
		{"🏪 Market", fmt.Sprintf("%s %s %s", s.Connector, s.TradingPair, s.Interval)},
		{"📅 Period", fmt.Sprintf("%s → %s", s.First.UTC().Format(timeLayout), s.Last.UTC().Format(timeLayout))},
		{"⏳ Warm-up", s.Warmup},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🕯️ Bars", s.Bars},
		{"🟢 Long bars", fmt.Sprintf("%d (%s)", s.Long, percent(s.Long, s.Bars))},
		{"🔴 Short bars", fmt.Sprintf("%d (%s)", s.Short, percent(s.Short, s.Bars))},
		{"⚪ Neutral bars", fmt.Sprintf("%d (%s)", s.Neutral, percent(s.Neutral, s.Bars))},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📣 Signals", fmt.Sprintf("%d (%d long, %d short)", s.Signals, s.LongSignals, s.ShortSignals)},
		{"💪 Avg intensity", fmt.Sprintf("%.3f", s.AvgIntensity)},
		{"💪 Max intensity", fmt.Sprintf("%.3f", s.MaxIntensity)},
		{"🎯 Final", fmt.Sprintf("%s %.3f", s.Final.Direction, s.Final.Intensity)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 50, Align: text.AlignLeft},
	})
	t.Render()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
