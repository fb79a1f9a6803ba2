package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

// StoreMode controls collision behavior.
type StoreMode string

const (
	StoreModeError   StoreMode = "error"   // default: fail on name collision
	StoreModeReplace StoreMode = "replace" // overwrite existing
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	Group       string // default: unassigned
	Name        string // required
	Username    string // required
	Secret      string // required
	Note        string
	Mode        StoreMode // default: StoreModeError
	CreateGroup bool      // create Group if it does not exist yet
}

// StoreOutput contains the result of the Store operation.
type StoreOutput struct {
	ID       int64  `json:"id"`
	Group    string `json:"group"`
	Name     string `json:"name"`
	Replaced bool   `json:"replaced"`
}

// Store creates a credential, or replaces the one with the same group and
// name when Mode is replace.
func Store(ctx context.Context, database *sql.DB, input StoreInput) (*StoreOutput, error) {
	if input.Mode == "" {
		input.Mode = StoreModeError
	}
	if input.Mode != StoreModeError && input.Mode != StoreModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	c := &credential.Credential{
		Group:    credential.NormalizeGroup(input.Group),
		Name:     credential.Normalize(input.Name),
		Username: input.Username,
		Secret:   input.Secret,
		Note:     input.Note,
	}
	if err := validateFields(c); err != nil {
		return nil, err
	}

	if err := ensureGroup(ctx, database, c.Group, input.CreateGroup); err != nil {
		return nil, err
	}

	existing, err := db.GetByName(ctx, database, c.Group, c.Name)
	switch {
	case err == nil:
		if input.Mode != StoreModeReplace {
			return nil, errors.NewNameAlreadyExists(c.Group, c.Name)
		}
		c.ID = existing.ID
		if err := db.UpdateByID(ctx, database, c); err != nil {
			return nil, err
		}
		return &StoreOutput{ID: c.ID, Group: c.Group, Name: c.Name, Replaced: true}, nil
	case !errors.Is(err, errors.ErrNotFound):
		return nil, err
	}

	if err := db.Insert(ctx, database, c); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(c.Group, c.Name)
		}
		return nil, err
	}

	return &StoreOutput{ID: c.ID, Group: c.Group, Name: c.Name}, nil
}

// validateFields checks the fields every stored credential must carry.
func validateFields(c *credential.Credential) error {
	if c.Name == "" {
		return errors.NewInvalidRequest("name is required")
	}
	if c.Username == "" {
		return errors.NewInvalidRequest("username is required")
	}
	if c.Secret == "" {
		return errors.NewInvalidRequest("secret is required")
	}
	return nil
}
