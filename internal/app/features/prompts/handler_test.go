package prompts_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/circles/internal/app/features/prompts"
	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/app/system/authz"
	"github.com/dalemusser/circles/internal/app/system/llm"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/circles/internal/testutil"
	"go.uber.org/zap"
)

// fakeCompleter returns a fixed completion and records the instruction.
type fakeCompleter struct {
	instruction string
	response    string
	err         error
}

func (f *fakeCompleter) Complete(_ context.Context, instruction string, _ float32) (string, error) {
	f.instruction = instruction
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestHandler(t *testing.T, completer llm.Completer) (*prompts.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tagStore := tagstore.New(db)
	if err := tagStore.EnsureSeed(ctx); err != nil {
		t.Fatalf("EnsureSeed failed: %v", err)
	}

	handler := prompts.NewHandler(
		circlestore.New(db),
		tagStore,
		authz.NewLoader(membershipstore.New(db)),
		completer,
		zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func TestServeGenerate(t *testing.T) {
	completer := &fakeCompleter{response: `["Q one?", "Q two?", "Q three?", "Q four?"]`}
	handler, _ := newTestHandler(t, completer)

	req := testutil.NewAuthenticatedRequest("POST", "/", testutil.TestClaims("Alex"), `{}`)
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Prompts []string `json:"prompts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(body.Prompts) != 4 {
		t.Errorf("expected 4 prompts, got %d", len(body.Prompts))
	}
}

func TestServeGenerate_CircleTagsShapeInstruction(t *testing.T) {
	completer := &fakeCompleter{response: `["Q one?"]`}
	handler, fixtures := newTestHandler(t, completer)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.TestClaims("Alex")
	circle := fixtures.CreateCircle(ctx, "The Martins", user.Subject, "grief")
	fixtures.CreateMembership(ctx, user.Subject, circle.ID, models.RoleOwner)

	req := testutil.NewAuthenticatedRequest("POST", "/", user,
		fmt.Sprintf(`{"circleId":%q,"count":2}`, circle.ID))
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	if !strings.Contains(completer.instruction, "The Martins") {
		t.Error("instruction should name the circle")
	}
	// The "grief" tag is in the support category.
	if !strings.Contains(completer.instruction, "difficult time") {
		t.Error("support-tagged circle should use gentle phrasing")
	}
}

func TestServeGenerate_NonMemberForbidden(t *testing.T) {
	completer := &fakeCompleter{response: `["Q?"]`}
	handler, fixtures := newTestHandler(t, completer)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.TestClaims("Alex")
	circle := fixtures.CreateCircle(ctx, "Private Circle", owner.Subject)
	fixtures.CreateMembership(ctx, owner.Subject, circle.ID, models.RoleOwner)

	outsider := testutil.TestClaims("Stranger")
	req := testutil.NewAuthenticatedRequest("POST", "/", outsider,
		fmt.Sprintf(`{"circleId":%q}`, circle.ID))
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeGenerate_CompleterFailure(t *testing.T) {
	completer := &fakeCompleter{err: llm.ErrEmptyCompletion}
	handler, _ := newTestHandler(t, completer)

	req := testutil.NewAuthenticatedRequest("POST", "/", testutil.TestClaims("Alex"), `{}`)
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusBadGateway)
}

func TestServeGenerate_Unconfigured(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := testutil.NewAuthenticatedRequest("POST", "/", testutil.TestClaims("Alex"), `{}`)
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusBadGateway)
}

func TestServeGenerate_CountClamped(t *testing.T) {
	completer := &fakeCompleter{response: `["a?","b?","c?","d?","e?","f?","g?","h?","i?","j?"]`}
	handler, _ := newTestHandler(t, completer)

	req := testutil.NewAuthenticatedRequest("POST", "/", testutil.TestClaims("Alex"), `{"count":50}`)
	rec := testutil.NewRecorder()
	handler.ServeGenerate(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Prompts []string `json:"prompts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(body.Prompts) != 8 {
		t.Errorf("count should clamp to 8, got %d prompts", len(body.Prompts))
	}
}
