package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.EasyPassError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const credentialColumns = `id, group_name, name, username, secret, note, created_at, updated_at`

// nextIDQuery yields the lowest unused positive id, filling gaps left by deletes.
const nextIDQuery = `
	SELECT CASE
		WHEN NOT EXISTS (SELECT 1 FROM credentials WHERE id = 1) THEN 1
		ELSE (
			SELECT MIN(t1.id + 1) FROM credentials t1
			LEFT JOIN credentials t2 ON t1.id + 1 = t2.id
			WHERE t2.id IS NULL
		)
	END
`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextID returns the id the next Insert would assign.
func NextID(ctx context.Context, db *sql.DB) (int64, error) {
	return nextID(ctx, db)
}

func nextID(ctx context.Context, q queryer) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, nextIDQuery).Scan(&id); err != nil {
		return 0, errors.NewInternal(err)
	}
	return id, nil
}

// Insert stores a new credential, assigning c.ID from the lowest unused id.
// The group must already exist.
func Insert(ctx context.Context, db *sql.DB, c *credential.Credential) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	exists, err := groupExists(ctx, tx, c.Group)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFound("group " + c.Group)
	}

	id, err := nextID(ctx, tx)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	query := `
		INSERT INTO credentials (` + credentialColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id, c.Group, c.Name, c.Username, c.Secret, c.Note, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a credential by id.
func GetByID(ctx context.Context, db *sql.DB, id int64) (*credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ?`

	c, err := scanCredential(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(formatID(id))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetByName retrieves a credential by group and display name.
func GetByName(ctx context.Context, db *sql.DB, group, name string) (*credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE group_name = ? AND name = ?`

	c, err := scanCredential(db.QueryRowContext(ctx, query, group, name))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(group + "/" + name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// CheckNameExists reports whether (group, name) is taken by a credential
// other than excludeID. Pass 0 to check against every credential.
func CheckNameExists(ctx context.Context, db *sql.DB, group, name string, excludeID int64) (bool, error) {
	query := `
		SELECT 1 FROM credentials
		WHERE group_name = ? AND name = ? AND id != ?
		LIMIT 1
	`

	var exists int
	err := db.QueryRowContext(ctx, query, group, name, excludeID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// UpdateByID rewrites group, name, username, secret and note of an existing
// credential and bumps updated_at.
func UpdateByID(ctx context.Context, db *sql.DB, c *credential.Credential) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	exists, err := groupExists(ctx, tx, c.Group)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFound("group " + c.Group)
	}

	now := time.Now().Unix()
	query := `
		UPDATE credentials
		SET group_name = ?, name = ?, username = ?, secret = ?, note = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		c.Group, c.Name, c.Username, c.Secret, c.Note, now, c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	if err := requireOneRow(result, c.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	c.UpdatedAt = now
	return nil
}

// UpdateNote replaces only the note of a credential.
func UpdateNote(ctx context.Context, db *sql.DB, id int64, note string) error {
	query := `UPDATE credentials SET note = ?, updated_at = ? WHERE id = ?`

	result, err := db.ExecContext(ctx, query, note, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireOneRow(result, id)
}

// Delete permanently removes a credential. Its id becomes reusable.
func Delete(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireOneRow(result, id)
}

// ListAll returns every credential ordered by group then display name.
func ListAll(ctx context.Context, db *sql.DB) ([]credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials ORDER BY group_name, name`
	return queryCredentials(ctx, db, query)
}

// ListByGroup returns the credentials of one group ordered by display name.
func ListByGroup(ctx context.Context, db *sql.DB, group string) ([]credential.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE group_name = ? ORDER BY name`
	return queryCredentials(ctx, db, query, group)
}

func queryCredentials(ctx context.Context, db *sql.DB, query string, args ...any) ([]credential.Credential, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []credential.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCredential scans a single row into a Credential struct.
func scanCredential(row rowScanner) (*credential.Credential, error) {
	var c credential.Credential
	err := row.Scan(
		&c.ID, &c.Group, &c.Name, &c.Username, &c.Secret, &c.Note,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireOneRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(formatID(id))
	}
	return nil
}
