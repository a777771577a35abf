package tagstore_test

import (
	"testing"

	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/testutil"
)

func TestStore_EnsureSeedAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	tag, ok, err := store.Get(ctx, "grief")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected seeded tag to resolve")
	}
	if tag.Category != tagstore.CategorySupport {
		t.Errorf("Category: got %q, want %q", tag.Category, tagstore.CategorySupport)
	}
	if tag.DisplayLabel == "" {
		t.Error("expected DisplayLabel to be set")
	}
}

func TestStore_Get_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	_, ok, err := store.Get(ctx, "no_such_tag")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("unknown tag should not resolve")
	}
}

func TestStore_ListActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	tags, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(tags) == 0 {
		t.Fatal("expected seeded active tags")
	}
	for _, tag := range tags {
		if !tag.Active {
			t.Errorf("inactive tag %q returned from ListActive", tag.Key)
		}
	}
}

func TestStore_FilterKnown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	known, err := store.FilterKnown(ctx, []string{"grief", "made_up", "grandparents"})
	if err != nil {
		t.Fatalf("FilterKnown failed: %v", err)
	}

	if len(known) != 2 {
		t.Fatalf("expected 2 known tags, got %d: %v", len(known), known)
	}
	if known[0] != "grief" || known[1] != "grandparents" {
		t.Errorf("expected input order preserved, got %v", known)
	}
}

func TestStore_FilterKnown_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	known, err := store.FilterKnown(ctx, nil)
	if err != nil {
		t.Fatalf("FilterKnown failed: %v", err)
	}
	if len(known) != 0 {
		t.Errorf("expected empty result, got %v", known)
	}
}

func TestStore_CacheServesRepeatReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tagstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	// Prime the cache.
	if _, _, err := store.Get(ctx, "grief"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Drop the backing collection; the cached snapshot keeps serving.
	if err := db.Collection("tag_configs").Drop(ctx); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	_, ok, err := store.Get(ctx, "grief")
	if err != nil {
		t.Fatalf("Get after drop failed: %v", err)
	}
	if !ok {
		t.Error("expected cached tag to survive collection drop")
	}
}
