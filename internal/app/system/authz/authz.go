// internal/app/system/authz/authz.go
package authz

import (
	"context"

	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	"github.com/dalemusser/circles/internal/domain/models"
)

// MembershipSet is the caller's circle memberships, loaded once per
// request with a single partition query and reused for every check made
// while handling that request. It is never cached across requests.
type MembershipSet struct {
	byCircle map[string]models.Membership
}

// Contains reports whether the set includes the given circle.
func (s MembershipSet) Contains(circleID string) bool {
	_, ok := s.byCircle[circleID]
	return ok
}

// Role returns the caller's role in the circle ("" if not a member).
func (s MembershipSet) Role(circleID string) string {
	return s.byCircle[circleID].Role
}

// CircleIDs returns the circle ids in the set.
func (s MembershipSet) CircleIDs() []string {
	ids := make([]string, 0, len(s.byCircle))
	for id := range s.byCircle {
		ids = append(ids, id)
	}
	return ids
}

// Memberships returns the underlying membership rows.
func (s MembershipSet) Memberships() []models.Membership {
	rows := make([]models.Membership, 0, len(s.byCircle))
	for _, m := range s.byCircle {
		rows = append(rows, m)
	}
	return rows
}

// Len returns the number of circles in the set.
func (s MembershipSet) Len() int { return len(s.byCircle) }

// Loader builds per-request membership sets. It is the single reusable
// authorization guard for circle-scoped routes: handlers load the set
// once and call Contains for each circle the request touches.
type Loader struct {
	memberships *membershipstore.Store
}

// NewLoader creates a Loader over the membership store.
func NewLoader(memberships *membershipstore.Store) *Loader {
	return &Loader{memberships: memberships}
}

// Load fetches the caller's membership set.
func (l *Loader) Load(ctx context.Context, userID string) (MembershipSet, error) {
	rows, err := l.memberships.ListByUser(ctx, userID)
	if err != nil {
		return MembershipSet{}, err
	}
	set := MembershipSet{byCircle: make(map[string]models.Membership, len(rows))}
	for _, m := range rows {
		set.byCircle[m.CircleID] = m
	}
	return set, nil
}

// NewSet builds a MembershipSet directly from rows. For tests.
func NewSet(rows []models.Membership) MembershipSet {
	set := MembershipSet{byCircle: make(map[string]models.Membership, len(rows))}
	for _, m := range rows {
		set.byCircle[m.CircleID] = m
	}
	return set
}
