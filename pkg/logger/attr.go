package logger

import (
	"log/slog"
)

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

func PlanID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("plan_id", id)
}

func Action(action string) slog.Attr {
	if action == "" {
		return slog.Attr{}
	}
	return slog.String("action", action)
}

func QuotaKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("quota_key", key)
}

func FlagKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("flag_key", key)
}

// Reason records a deny reason.
func Reason(reason string) slog.Attr {
	if reason == "" {
		return slog.Attr{}
	}
	return slog.String("reason", reason)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
