package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	// Addressing
	ID    int64
	Group string
	Name  string

	// Editable fields (nil = don't change)
	NewGroup *string
	NewName  *string
	Username *string
	Secret   *string
	Note     *string

	CreateGroup bool
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ID    int64  `json:"id"`
	Group string `json:"group"`
	Name  string `json:"name"`
}

// Update modifies an existing credential.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Group, input.Name)
	if err != nil {
		return nil, err
	}

	if input.NewGroup == nil && input.NewName == nil && input.Username == nil && input.Secret == nil && input.Note == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	c, err := resolve(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	if input.NewGroup != nil {
		c.Group = credential.NormalizeGroup(*input.NewGroup)
	}
	if input.NewName != nil {
		c.Name = credential.Normalize(*input.NewName)
	}
	if input.Username != nil {
		c.Username = *input.Username
	}
	if input.Secret != nil {
		c.Secret = *input.Secret
	}
	if input.Note != nil {
		c.Note = *input.Note
	}
	if err := validateFields(c); err != nil {
		return nil, err
	}

	if input.NewGroup != nil {
		if err := ensureGroup(ctx, database, c.Group, input.CreateGroup); err != nil {
			return nil, err
		}
	}

	taken, err := db.CheckNameExists(ctx, database, c.Group, c.Name, c.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errors.NewNameAlreadyExists(c.Group, c.Name)
	}

	if err := db.UpdateByID(ctx, database, c); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(c.Group, c.Name)
		}
		return nil, err
	}

	return &UpdateOutput{ID: c.ID, Group: c.Group, Name: c.Name}, nil
}
