package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID            int64
	Group         string
	Name          string
	IncludeSecret bool // default: false, the secret is blanked
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	credential.Summary
	Note   string `json:"note"`
	Secret string `json:"secret,omitempty"`
}

// Fetch retrieves one credential by id or by group and name.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Group, input.Name)
	if err != nil {
		return nil, err
	}

	c, err := resolve(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Summary: c.ToSummary(),
		Note:    c.Note,
	}
	if input.IncludeSecret {
		output.Secret = c.Secret
	}
	return output, nil
}
