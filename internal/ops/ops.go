package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

// Address represents a validated credential address.
type Address struct {
	ByID  bool
	ID    int64
	Group string // normalized, defaulted to the unassigned group for name-mode
	Name  string // normalized
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Rules:
// - Must specify exactly one addressing mode: id OR (group + name)
// - id together with a name is rejected as ambiguous
// - Group alone is not an address
func ValidateAddress(id int64, group, name string) (*Address, error) {
	name = credential.Normalize(name)

	if id < 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}
	if id > 0 && name != "" {
		return nil, errors.NewInvalidRequest("specify either id or name, not both")
	}
	if id > 0 {
		return &Address{ByID: true, ID: id}, nil
	}
	if name == "" {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}

	return &Address{
		Group: credential.NormalizeGroup(group),
		Name:  name,
	}, nil
}

// resolve loads the credential an address points at.
func resolve(ctx context.Context, database *sql.DB, addr *Address) (*credential.Credential, error) {
	if addr.ByID {
		return db.GetByID(ctx, database, addr.ID)
	}
	return db.GetByName(ctx, database, addr.Group, addr.Name)
}

// ensureGroup makes sure group exists, creating it when create is set.
func ensureGroup(ctx context.Context, database *sql.DB, group string, create bool) error {
	exists, err := db.GroupExists(ctx, database, group)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if !create {
		return errors.NewNotFound("group " + group)
	}
	if err := db.InsertGroup(ctx, database, group); err != nil && err != db.ErrUniqueConstraint {
		return err
	}
	return nil
}
