package config

// FieldPrompt describes how a configuration field is collected from an
// operator creating a new controller.
type FieldPrompt struct {
	Field       string
	Prompt      string
	PromptOnNew bool
	Description string
}

// Prompts lists the operator prompts of every indicator family, keyed by
// kind. Field names match the yaml keys of the typed configs.
var Prompts = map[Kind][]FieldPrompt{
	KindEMACrossover: {
		{Field: "interval", Prompt: "Enter the candle interval (e.g., 1m, 3m, 5m): ", Description: "Candle interval"},
		{Field: "fast_period", Prompt: "Enter the fast EMA period: ", PromptOnNew: true, Description: "Fast EMA length"},
		{Field: "slow_period", Prompt: "Enter the slow EMA period: ", PromptOnNew: true, Description: "Slow EMA length"},
		{Field: "volume_period", Prompt: "Enter the average volume period: ", PromptOnNew: true, Description: "Rolling volume mean length"},
		{Field: "volume_multiplier", Prompt: "Enter the volume multiplier (e.g., 1.5x): ", PromptOnNew: true, Description: "Volume must exceed average times this"},
		{Field: "adx_period", Prompt: "Enter the ADX period for trend strength filter: ", PromptOnNew: true, Description: "ADX length"},
		{Field: "adx_threshold", Prompt: "Enter the ADX threshold for valid trades: ", PromptOnNew: true, Description: "Minimum trend strength"},
	},
	KindMACDMomentum: {
		{Field: "interval", Prompt: "Enter the candle interval (e.g., 1m, 5m, 15m): ", Description: "Candle interval"},
		{Field: "macd_fast", Prompt: "Enter the MACD fast period: ", PromptOnNew: true, Description: "MACD fast EMA length"},
		{Field: "macd_slow", Prompt: "Enter the MACD slow period: ", PromptOnNew: true, Description: "MACD slow EMA length"},
		{Field: "macd_signal", Prompt: "Enter the MACD signal period: ", PromptOnNew: true, Description: "Signal line EMA length"},
		{Field: "rsi_period", Prompt: "Enter the RSI period: ", PromptOnNew: true, Description: "RSI filter length"},
	},
	KindRSI: {
		{Field: "interval", Prompt: "Enter the candle interval: ", Description: "Candle interval"},
		{Field: "length", Prompt: "Enter the RSI length: ", PromptOnNew: true, Description: "Wilder smoothing length"},
		{Field: "oversold", Prompt: "Enter the oversold threshold: ", PromptOnNew: true, Description: "Long bias below this value"},
		{Field: "overbought", Prompt: "Enter the overbought threshold: ", PromptOnNew: true, Description: "Short bias above this value"},
	},
	KindBollinger: {
		{Field: "interval", Prompt: "Enter the candle interval: ", Description: "Candle interval"},
		{Field: "length", Prompt: "Enter the band length: ", PromptOnNew: true, Description: "Rolling mean and deviation length"},
		{Field: "mult", Prompt: "Enter the band width multiplier: ", PromptOnNew: true, Description: "Standard deviations to each band"},
	},
}

// PromptsFor returns the prompts of kind, optionally only those asked
// when a controller is created.
func PromptsFor(kind Kind, onNewOnly bool) []FieldPrompt {
	var out []FieldPrompt
	for _, p := range Prompts[kind] {
		if onNewOnly && !p.PromptOnNew {
			continue
		}
		out = append(out, p)
	}
	return out
}
