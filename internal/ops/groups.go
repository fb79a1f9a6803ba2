package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

// GroupsOutput contains the result of the Groups operation.
type GroupsOutput struct {
	Groups []credential.Group `json:"groups"`
}

// Groups lists every group with its credential count.
func Groups(ctx context.Context, database *sql.DB) (*GroupsOutput, error) {
	groups, err := db.ListGroups(ctx, database)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []credential.Group{}
	}
	return &GroupsOutput{Groups: groups}, nil
}

// GroupOutput contains the result of AddGroup and DeleteGroup.
type GroupOutput struct {
	Name    string `json:"name"`
	Created bool   `json:"created,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// AddGroup creates an empty group.
func AddGroup(ctx context.Context, database *sql.DB, name string) (*GroupOutput, error) {
	group := credential.Normalize(name)
	if group == "" {
		return nil, errors.NewInvalidRequest("group name is required")
	}

	if err := db.InsertGroup(ctx, database, group); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewGroupAlreadyExists(group)
		}
		return nil, err
	}
	return &GroupOutput{Name: group, Created: true}, nil
}

// DeleteGroup removes an empty group. The unassigned group and groups that
// still hold credentials are refused.
func DeleteGroup(ctx context.Context, database *sql.DB, name string) (*GroupOutput, error) {
	group := credential.Normalize(name)
	if group == "" {
		return nil, errors.NewInvalidRequest("group name is required")
	}

	if err := db.DeleteGroup(ctx, database, group); err != nil {
		return nil, err
	}
	return &GroupOutput{Name: group, Deleted: true}, nil
}
