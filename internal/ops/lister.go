package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

// Lister gives the picker a full read of the store, secrets included.
type Lister struct {
	DB *sql.DB
}

// ListAll returns every credential in store order. Any failure is reported
// as STORE_ACCESS_FAILED so the picker can tell it apart from its own faults.
func (l Lister) ListAll(ctx context.Context) ([]credential.Credential, error) {
	creds, err := db.ListAll(ctx, l.DB)
	if err != nil {
		return nil, errors.NewStoreAccessFailed(err)
	}
	return creds, nil
}
