package surface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/picker"
)

type recorded struct {
	kind     string
	username string
	secret   string
}

func recordingCallbacks(out *[]recorded) picker.Callbacks {
	return picker.Callbacks{
		OneClick: func(u, s string) { *out = append(*out, recorded{"oneclick", u, s}) },
		Username: func(u string) { *out = append(*out, recorded{"username", u, ""}) },
		Password: func(s string) { *out = append(*out, recorded{"password", "", s}) },
		Dismiss:  func() { *out = append(*out, recorded{kind: "dismiss"}) },
	}
}

func session() picker.Session {
	return picker.Session{Groups: picker.BuildMenu([]credential.Credential{
		{ID: 1, Group: "web", Name: "github", Username: "bob", Secret: "pw1"},
		{ID: 2, Group: "web", Name: "gitlab", Username: "amy", Secret: "pw2"},
	})}
}

func TestLog_DismissesByDefault(t *testing.T) {
	var got []recorded
	err := NewLog(0).Show(context.Background(), session(), recordingCallbacks(&got))

	require.NoError(t, err)
	require.Equal(t, []recorded{{kind: "dismiss"}}, got)
}

func TestLog_AutoPick(t *testing.T) {
	tests := []struct {
		action autotype.Action
		want   recorded
	}{
		{autotype.ActionOneClick, recorded{"oneclick", "bob", "pw1"}},
		{autotype.ActionUsername, recorded{"username", "bob", ""}},
		{autotype.ActionPassword, recorded{"password", "", "pw1"}},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			var got []recorded
			require.NoError(t, NewLog(tt.action).Show(context.Background(), session(), recordingCallbacks(&got)))
			require.Equal(t, []recorded{tt.want}, got)
		})
	}
}

func TestLog_EmptySessionDismisses(t *testing.T) {
	var got []recorded
	require.NoError(t, NewLog(autotype.ActionOneClick).Show(context.Background(), picker.Session{}, recordingCallbacks(&got)))
	require.Equal(t, []recorded{{kind: "dismiss"}}, got)
}

func TestLog_RetiredSessionDismisses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got []recorded
	require.NoError(t, NewLog(autotype.ActionOneClick).Show(ctx, session(), recordingCallbacks(&got)))
	require.Equal(t, []recorded{{kind: "dismiss"}}, got)
}
