package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID    int64
	Group string
	Name  string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// Delete permanently removes a credential. Its id becomes free for reuse.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Group, input.Name)
	if err != nil {
		return nil, err
	}

	c, err := resolve(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	if err := db.Delete(ctx, database, c.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      c.ID,
	}, nil
}
