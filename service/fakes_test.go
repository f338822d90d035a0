// service/fakes_test.go
package service

import (
	"context"
	"sync"
	"time"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// fakeStore is an in-memory MembershipStore that counts calls.
type fakeStore struct {
	mu          sync.Mutex
	memberships []model.Membership
	businesses  map[string]*model.Business
	err         error
	listCalls   int
	touched     []string
}

func newFakeStore(memberships ...model.Membership) *fakeStore {
	store := &fakeStore{businesses: map[string]*model.Business{}}
	for _, m := range memberships {
		if m.Business != nil {
			store.businesses[m.BusinessID] = m.Business
		}
	}
	store.memberships = memberships
	return store
}

func (f *fakeStore) ListMemberships(_ context.Context, userID string) ([]model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBusiness(_ context.Context, businessID string) (*model.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.businesses[businessID]; ok {
		return b, nil
	}
	return nil, obd_errors.ErrNotFound
}

func (f *fakeStore) TouchMembership(_ context.Context, userID, businessID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, userID+"/"+businessID)
	return nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := baseTime.Add(d)
	return &t
}

func premiumBusiness(id, owner string) *model.Business {
	return &model.Business{ID: id, Name: "Biz " + id, OwnerUserID: owner, Plan: model.PlanPremium}
}

func member(userID, businessID string, role model.Role, status model.MembershipStatus) model.Membership {
	return model.Membership{
		ID:         userID + "-" + businessID,
		UserID:     userID,
		BusinessID: businessID,
		Role:       role,
		Status:     status,
		CreatedAt:  baseTime,
		Business:   premiumBusiness(businessID, "owner-of-"+businessID),
	}
}

func sessionFor(userID string) *model.Session {
	return &model.Session{ID: "s-" + userID, Principal: model.Principal{ID: userID}}
}

func newTenantService(store *fakeStore) *TenantService {
	svc := NewTenantService(store, nil)
	svc.now = func() time.Time { return baseTime }
	return svc
}
