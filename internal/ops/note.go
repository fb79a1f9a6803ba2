package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/db"
)

// SetNoteInput contains parameters for the SetNote operation.
type SetNoteInput struct {
	ID    int64
	Group string
	Name  string
	Note  string // empty clears the note
}

// SetNoteOutput contains the result of the SetNote operation.
type SetNoteOutput struct {
	ID      int64 `json:"id"`
	HasNote bool  `json:"has_note"`
}

// SetNote replaces the markdown note of a credential.
func SetNote(ctx context.Context, database *sql.DB, input SetNoteInput) (*SetNoteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Group, input.Name)
	if err != nil {
		return nil, err
	}

	c, err := resolve(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	if err := db.UpdateNote(ctx, database, c.ID, input.Note); err != nil {
		return nil, err
	}

	return &SetNoteOutput{ID: c.ID, HasNote: input.Note != ""}, nil
}
