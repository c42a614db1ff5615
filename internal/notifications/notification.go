package notifications

import (
	"time"

	"github.com/angelmondragon/pim-console/pkg/enums"
)

// Notification is a user-facing message raised by a console component.
type Notification struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Severity  enums.Severity `json:"severity"`
	Source    string         `json:"source,omitempty"`
	Details   any            `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsZero reports whether n carries no message.
func (n Notification) IsZero() bool {
	return n.Message == ""
}

func Success(source, message string) Notification {
	return Notification{Source: source, Severity: enums.SeveritySuccess, Message: message}
}

func Info(source, message string) Notification {
	return Notification{Source: source, Severity: enums.SeverityInfo, Message: message}
}

func Warning(source, message string) Notification {
	return Notification{Source: source, Severity: enums.SeverityWarning, Message: message}
}

func Error(source, message string) Notification {
	return Notification{Source: source, Severity: enums.SeverityError, Message: message}
}

// WithDetails attaches structured details, e.g. per-file rejection reasons.
func (n Notification) WithDetails(details any) Notification {
	n.Details = details
	return n
}
