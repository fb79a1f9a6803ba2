package db

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/errors"
)

// ListGroups returns every group with the number of credentials it holds,
// ordered by name.
func ListGroups(ctx context.Context, db *sql.DB) ([]credential.Group, error) {
	query := `
		SELECT g.name, COUNT(c.id)
		FROM credential_groups g
		LEFT JOIN credentials c ON c.group_name = g.name
		GROUP BY g.name
		ORDER BY g.name
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var groups []credential.Group
	for rows.Next() {
		var g credential.Group
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return groups, nil
}

// GroupExists reports whether a group with the given name exists.
func GroupExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	return groupExists(ctx, db, name)
}

func groupExists(ctx context.Context, q queryer, name string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM credential_groups WHERE name = ? LIMIT 1`, name).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// InsertGroup creates a group. Returns ErrUniqueConstraint if it already exists.
func InsertGroup(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO credential_groups (name, created_at) VALUES (?, ?)`,
		name, time.Now().Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteGroup removes an empty group. The unassigned group and groups still
// referenced by credentials are refused.
func DeleteGroup(ctx context.Context, db *sql.DB, name string) error {
	if name == credential.Unassigned {
		return errors.NewGroupProtected(name)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE group_name = ?`, name,
	).Scan(&count); err != nil {
		return errors.NewInternal(err)
	}
	if count > 0 {
		return errors.NewGroupInUse(name, count)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM credential_groups WHERE name = ?`, name)
	if err != nil {
		return errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("group " + name)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
