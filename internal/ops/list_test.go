package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestList_AllAndByGroup(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	storeCredential(t, database, "work", "mail")
	storeCredential(t, database, "", "github")
	storeCredential(t, database, "work", "chat")

	all, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)

	work, err := List(ctx, database, ListInput{Group: "work"})
	require.NoError(t, err)
	require.Len(t, work.Items, 2)
	require.Equal(t, "chat", work.Items[0].Name)
	require.Equal(t, "mail", work.Items[1].Name)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	out, err := List(context.Background(), setupDB(t), ListInput{Group: "nothing"})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Equal(t, 0, out.Total)
}
