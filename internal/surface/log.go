// Package surface renders picker sessions.
package surface

import (
	"context"
	"log/slog"

	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/picker"
)

// Log is a headless surface. It logs the menu it would show and then
// either dismisses or, when AutoPick is set, chooses that action on the
// first credential. Secrets are never logged.
type Log struct {
	AutoPick autotype.Action
	logger   *slog.Logger
}

// NewLog creates a headless surface.
func NewLog(autoPick autotype.Action) *Log {
	return &Log{AutoPick: autoPick, logger: slog.With("component", "surface")}
}

// Show logs s and reports a choice synchronously.
func (l *Log) Show(ctx context.Context, s picker.Session, cb picker.Callbacks) error {
	if ctx.Err() != nil {
		cb.Dismiss()
		return nil
	}

	for _, g := range s.Groups {
		names := make([]string, 0, len(g.Items))
		for _, it := range g.Items {
			names = append(names, it.Name)
		}
		l.logger.Info("picker group", "session", s.ID, "group", g.Name, "credentials", names)
	}
	l.logger.Info("picker shown", "session", s.ID, "x", s.Anchor.X, "y", s.Anchor.Y, "groups", len(s.Groups))

	item, ok := first(s)
	if l.AutoPick == 0 || !ok {
		cb.Dismiss()
		return nil
	}

	l.logger.Info("picker auto-pick", "session", s.ID, "credential", item.Name, "action", l.AutoPick.String())
	choose(cb, item, l.AutoPick)
	return nil
}

func first(s picker.Session) (picker.Item, bool) {
	for _, g := range s.Groups {
		if len(g.Items) > 0 {
			return g.Items[0], true
		}
	}
	return picker.Item{}, false
}

// choose invokes the callback matching action.
func choose(cb picker.Callbacks, item picker.Item, action autotype.Action) {
	switch action {
	case autotype.ActionOneClick:
		cb.OneClick(item.Username, item.Secret)
	case autotype.ActionUsername:
		cb.Username(item.Username)
	case autotype.ActionPassword:
		cb.Password(item.Secret)
	default:
		cb.Dismiss()
	}
}
