package circlestore_test

import (
	"testing"

	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/circles/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circle := models.Circle{
		ID:          ids.NewCircleID(),
		Name:        "The Martins",
		Description: "Weekly check-ins",
		Tags:        []string{"grandparents"},
		CreatedBy:   "user_abc",
	}

	created, err := store.Create(ctx, circle)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicateID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := ids.NewCircleID()

	_, err := store.Create(ctx, models.Circle{ID: id, Name: "First", CreatedBy: "user_a"})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err = store.Create(ctx, models.Circle{ID: id, Name: "Second", CreatedBy: "user_b"})
	if err != circlestore.ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_Create_CaseInsensitiveName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Circle{
		ID:        ids.NewCircleID(),
		Name:      "École Famille",
		CreatedBy: "user_abc",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.NameCI != "ecole famille" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "ecole famille")
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circle := fixtures.CreateCircle(ctx, "Lookup Circle", "user_abc", "grief")

	found, err := store.GetByID(ctx, circle.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if found.Name != circle.Name {
		t.Errorf("Name: got %q, want %q", found.Name, circle.Name)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "grief" {
		t.Errorf("Tags: got %v, want [grief]", found.Tags)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, ids.NewCircleID())
	if err != circlestore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fixtures.CreateCircle(ctx, "Circle One", "user_abc")
	c2 := fixtures.CreateCircle(ctx, "Circle Two", "user_abc")
	missing := ids.NewCircleID()

	got, err := store.GetMany(ctx, []string{c1.ID, c2.ID, missing})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 circles, got %d", len(got))
	}
	if got[c1.ID].Name != "Circle One" {
		t.Errorf("circle one name: got %q", got[c1.ID].Name)
	}
	if _, ok := got[missing]; ok {
		t.Error("missing id should not appear in result")
	}
}

func TestStore_GetMany_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.GetMany(ctx, nil)
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}

func TestStore_UpdateTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circle := fixtures.CreateCircle(ctx, "Tagged Circle", "user_abc", "grandparents")

	if err := store.UpdateTags(ctx, circle.ID, []string{"long_distance", "grief"}); err != nil {
		t.Fatalf("UpdateTags failed: %v", err)
	}

	found, err := store.GetByID(ctx, circle.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Tags) != 2 {
		t.Errorf("Tags: got %v, want 2 entries", found.Tags)
	}
}

func TestStore_UpdateTags_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.UpdateTags(ctx, ids.NewCircleID(), []string{"grandparents"})
	if err != circlestore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Count(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := circlestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCircle(ctx, "Count One", "user_abc")
	fixtures.CreateCircle(ctx, "Count Two", "user_abc")

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count: got %d, want 2", n)
	}
}
