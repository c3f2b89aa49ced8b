package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the inbound request id.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID records the local user id.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// PlanID records the local plan id.
func PlanID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("plan_id", id)
}

// PreapprovalPlanID records the processor's plan-approval id, the key that
// correlates a webhook with a pending subscription.
func PreapprovalPlanID(id any) slog.Attr {
	return nonEmpty("preapproval_plan_id", id)
}

// PreapprovalID records the processor's subscription id.
func PreapprovalID(id any) slog.Attr {
	return nonEmpty("preapproval_id", id)
}

// NotificationType records the webhook notification type.
func NotificationType(t string) slog.Attr {
	return nonEmpty("notification_type", t)
}

func Status(s string) slog.Attr {
	return slog.String("status", s)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// nonEmpty drops nil values and values whose string form is empty, so typed
// string ids can be passed without conversion.
func nonEmpty(key string, v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	if s, ok := v.(interface{ String() string }); ok {
		if s.String() == "" {
			return slog.Attr{}
		}
		return slog.String(key, s.String())
	}
	if s, ok := v.(string); ok && s == "" {
		return slog.Attr{}
	}
	return slog.Any(key, v)
}
