package picker

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/hook"
)

// Session is one live picker: the snapshot it was built from, where it is
// anchored, and the menu built from the snapshot.
type Session struct {
	ID       ulid.ULID
	Anchor   hook.Point
	Snapshot []credential.Credential
	Groups   []GroupEntry

	// ctx is cancelled when the session is retired.
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(ctx context.Context, anchor hook.Point, snapshot []credential.Credential) *Session {
	s := &Session{
		ID:       ulid.Make(),
		Anchor:   anchor,
		Snapshot: snapshot,
		Groups:   BuildMenu(snapshot),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s
}

// Done is closed once the session has been retired, by a choice, a
// dismissal or a newer trigger.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Callbacks are handed to the surface with each session. The surface must
// invoke exactly one of them.
type Callbacks struct {
	OneClick func(username, secret string)
	Username func(username string)
	Password func(secret string)
	Dismiss  func()
}
