package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/easypass/internal/errors"
)

func TestFetch_SecretHiddenByDefault(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)
	stored := storeCredential(t, database, "", "github")

	out, err := Fetch(ctx, database, FetchInput{ID: stored.ID})
	require.NoError(t, err)
	require.Equal(t, "github", out.Name)
	require.Equal(t, "github-user", out.Username)
	require.Empty(t, out.Secret)

	out, err = Fetch(ctx, database, FetchInput{Name: "github", IncludeSecret: true})
	require.NoError(t, err)
	require.Equal(t, "github-secret", out.Secret)
}

func TestFetch_NotFound(t *testing.T) {
	database := setupDB(t)

	_, err := Fetch(context.Background(), database, FetchInput{Group: "work", Name: "mail"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch error = %v, want NOT_FOUND", err)
	}
}
