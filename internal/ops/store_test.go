package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/errors"
)

func TestStore_HappyPath(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	output, err := Store(ctx, database, StoreInput{
		Name:     "github",
		Username: "bob",
		Secret:   "hunter2",
		Note:     "personal account",
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if output.ID != 1 {
		t.Errorf("ID = %d, want 1", output.ID)
	}
	if output.Group != credential.Unassigned {
		t.Errorf("Group = %q, want %q", output.Group, credential.Unassigned)
	}
	if output.Replaced {
		t.Error("Replaced = true on first store")
	}

	c, err := db.GetByID(ctx, database, output.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if c.Secret != "hunter2" || c.Note != "personal account" {
		t.Errorf("stored credential = %+v", c)
	}
}

func TestStore_MissingFields(t *testing.T) {
	database := setupDB(t)

	tests := []struct {
		name  string
		input StoreInput
	}{
		{"no name", StoreInput{Username: "u", Secret: "s"}},
		{"blank name", StoreInput{Name: "   ", Username: "u", Secret: "s"}},
		{"no username", StoreInput{Name: "n", Secret: "s"}},
		{"no secret", StoreInput{Name: "n", Username: "u"}},
		{"bad mode", StoreInput{Name: "n", Username: "u", Secret: "s", Mode: "merge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Store(context.Background(), database, tt.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("Store error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestStore_DuplicateName(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	storeCredential(t, database, "", "github")

	_, err := Store(ctx, database, StoreInput{Name: "github", Username: "x", Secret: "y"})
	if !errors.Is(err, errors.ErrNameAlreadyExists) {
		t.Errorf("Store error = %v, want NAME_ALREADY_EXISTS", err)
	}

	// Same name in a different group is allowed
	if _, err := Store(ctx, database, StoreInput{Group: "work", Name: "github", Username: "x", Secret: "y", CreateGroup: true}); err != nil {
		t.Errorf("Store in other group failed: %v", err)
	}
}

func TestStore_ReplaceMode(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	first := storeCredential(t, database, "", "github")

	output, err := Store(ctx, database, StoreInput{
		Name:     "github",
		Username: "alice",
		Secret:   "new-secret",
		Mode:     StoreModeReplace,
	})
	if err != nil {
		t.Fatalf("Store replace failed: %v", err)
	}
	if output.ID != first.ID {
		t.Errorf("ID = %d, want %d (same row)", output.ID, first.ID)
	}
	if !output.Replaced {
		t.Error("Replaced = false, want true")
	}

	c, err := db.GetByID(ctx, database, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if c.Username != "alice" || c.Secret != "new-secret" {
		t.Errorf("credential not replaced: %+v", c)
	}
}

func TestStore_UnknownGroup(t *testing.T) {
	database := setupDB(t)

	_, err := Store(context.Background(), database, StoreInput{
		Group:    "work",
		Name:     "mail",
		Username: "u",
		Secret:   "s",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Store error = %v, want NOT_FOUND", err)
	}
}

func TestStore_CreateGroup(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)

	storeCredential(t, database, "work", "mail")

	exists, err := db.GroupExists(ctx, database, "work")
	if err != nil {
		t.Fatalf("GroupExists failed: %v", err)
	}
	if !exists {
		t.Error("group was not created")
	}
}
