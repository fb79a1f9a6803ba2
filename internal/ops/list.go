package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Group string // empty: every group
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []credential.Summary `json:"items"`
	Total int                  `json:"total"`
	Sort  string               `json:"sort"`
}

// List returns credential summaries, optionally restricted to one group.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	var (
		creds []credential.Credential
		err   error
	)
	if group := credential.Normalize(input.Group); group != "" {
		creds, err = db.ListByGroup(ctx, database, group)
	} else {
		creds, err = db.ListAll(ctx, database)
	}
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]credential.Summary, 0, len(creds))
	for i := range creds {
		items = append(items, creds[i].ToSummary())
	}

	return &ListOutput{
		Items: items,
		Total: len(items),
		Sort:  "group_name_asc",
	}, nil
}
