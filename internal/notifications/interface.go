package notifications

import "context"

// Alert level names
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// Alert is one notification
type Alert struct {
	Level   string
	Title   string
	Message string
}

// Notifier defines the interface for notification services
type Notifier interface {
	// SendAlert delivers alert to the notifier's default recipients
	SendAlert(ctx context.Context, alert Alert) error
}
