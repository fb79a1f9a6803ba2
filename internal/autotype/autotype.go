// Package autotype turns a picker selection into keystrokes typed into
// whichever window holds input focus.
package autotype

import (
	"fmt"

	"github.com/hpungsan/easypass/internal/errors"
)

// Key is a named, non-text key.
type Key int

const (
	// KeyNextField moves focus to the next field (Tab).
	KeyNextField Key = iota + 1
	// KeySubmit submits the form (Enter).
	KeySubmit
)

func (k Key) String() string {
	switch k {
	case KeyNextField:
		return "next-field"
	case KeySubmit:
		return "submit"
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// Action is one of the three leaf choices offered per credential.
type Action int

const (
	ActionOneClick Action = iota + 1
	ActionUsername
	ActionPassword
)

func (a Action) String() string {
	switch a {
	case ActionOneClick:
		return "OneClick"
	case ActionUsername:
		return "Username"
	case ActionPassword:
		return "Password"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Injector sends keystrokes to the focused window.
type Injector interface {
	TypeText(s string) error
	PressKey(k Key) error
}

// Step is either literal text or a single key press.
type Step struct {
	Text string
	Key  Key // zero for text steps
}

// IsKey reports whether the step presses a named key.
func (s Step) IsKey() bool { return s.Key != 0 }

// String renders the step without revealing text content.
func (s Step) String() string {
	if s.IsKey() {
		return s.Key.String()
	}
	return fmt.Sprintf("text(%d)", len([]rune(s.Text)))
}

// Plan returns the exact steps for action. OneClick types the username,
// moves to the next field, types the secret and submits. Username and
// Password type one string with no trailing key.
func Plan(action Action, username, secret string) []Step {
	switch action {
	case ActionOneClick:
		return []Step{
			{Text: username},
			{Key: KeyNextField},
			{Text: secret},
			{Key: KeySubmit},
		}
	case ActionUsername:
		return []Step{{Text: username}}
	case ActionPassword:
		return []Step{{Text: secret}}
	}
	return nil
}

// Run executes steps in order and stops at the first failure. Nothing is
// retried: characters already typed cannot be taken back, and typing them
// again would duplicate them.
func Run(inj Injector, steps []Step) error {
	for i, s := range steps {
		var err error
		if s.IsKey() {
			err = inj.PressKey(s.Key)
		} else {
			err = inj.TypeText(s.Text)
		}
		if err != nil {
			return errors.NewInjectionFailed(i, err)
		}
	}
	return nil
}
