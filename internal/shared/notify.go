package shared

import "github.com/charmbracelet/log"

// NotifyKind classifies a user-facing notification.
type NotifyKind int

const (
	NotifyInfo NotifyKind = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

func (k NotifyKind) String() string {
	switch k {
	case NotifySuccess:
		return "success"
	case NotifyWarning:
		return "warning"
	case NotifyError:
		return "error"
	default:
		return "info"
	}
}

// Notifier delivers user-facing notifications (subscription changes, completed books).
//
// The view layer supplies the implementation; stores only hold the capability.
type Notifier interface {
	Notify(title, message string, kind NotifyKind)
}

// LogNotifier implements [Notifier] by writing notifications to a [log.Logger].
//
// Used as the default when no interactive surface is attached.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a [LogNotifier] backed by the given logger.
func NewLogNotifier(l *log.Logger) *LogNotifier {
	if l == nil {
		l = NewLogger(nil)
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(title, message string, kind NotifyKind) {
	switch kind {
	case NotifyError:
		n.logger.Errorf("%s: %s", title, message)
	case NotifyWarning:
		n.logger.Warnf("%s: %s", title, message)
	default:
		n.logger.Infof("%s: %s", title, message)
	}
}
