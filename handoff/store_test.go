// handoff/store_test.go
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStoreWithClock() (*Store, *MemoryStorage, *clock) {
	c := &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	storage.now = c.now
	return NewStore(storage, WithClock(c.now)), storage, c
}

var draft = Draft{
	SourceApp:  model.AppReviewResponder,
	BusinessID: "biz-1",
	Data:       json.RawMessage(`{"reply":"Thanks for visiting!","rating":5}`),
}

func TestCreateReadRoundTrip(t *testing.T) {
	store, _, c := newStoreWithClock()
	ctx := context.Background()

	created := store.Create(ctx, "reply", draft, 10*time.Minute)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, c.now(), created.CreatedAt)
	assert.Equal(t, c.now().Add(10*time.Minute), created.ExpiresAt)

	got := store.Read(ctx, "reply")
	require.NotNil(t, got)

	want := &Payload{SourceApp: draft.SourceApp, BusinessID: draft.BusinessID, Data: draft.Data}
	ignoreStamps := cmpopts.IgnoreFields(Payload{}, "ID", "CreatedAt", "ExpiresAt")
	if diff := cmp.Diff(want, got, ignoreStamps); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("read differs from created (-created +read):\n%s", diff)
	}
}

func TestCreateCompactsData(t *testing.T) {
	store, _, _ := newStoreWithClock()
	ctx := context.Background()
	spaced := Draft{
		SourceApp:  draft.SourceApp,
		BusinessID: draft.BusinessID,
		Data:       json.RawMessage("{\n  \"reply\": \"Thanks for visiting!\",\n  \"rating\": 5\n}"),
	}

	require.NotNil(t, store.Create(ctx, "reply", spaced, time.Minute))
	got := store.Read(ctx, "reply")
	require.NotNil(t, got)
	assert.JSONEq(t, string(spaced.Data), string(got.Data))
	assert.Equal(t, `{"reply":"Thanks for visiting!","rating":5}`, string(got.Data))
}

func TestReadEnforcesTTL(t *testing.T) {
	const ttl = 5 * time.Minute
	ctx := context.Background()

	t.Run("just before expiry", func(t *testing.T) {
		store, _, c := newStoreWithClock()
		require.NotNil(t, store.Create(ctx, "k", draft, ttl))
		c.advance(ttl - time.Millisecond)
		assert.NotNil(t, store.Read(ctx, "k"))
	})

	t.Run("just after expiry", func(t *testing.T) {
		store, storage, c := newStoreWithClock()
		require.NotNil(t, store.Create(ctx, "k", draft, ttl))
		c.advance(ttl + time.Millisecond)
		assert.Nil(t, store.Read(ctx, "k"))
		assert.Nil(t, store.Read(ctx, "k"))
		assert.Zero(t, storage.Len())
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		store, _, c := newStoreWithClock()
		require.NotNil(t, store.Create(ctx, "k", draft, ttl))
		c.advance(ttl)
		assert.Nil(t, store.Read(ctx, "k"))
	})
}

func TestReadRemovesExpiredEvenIfStorageKeepsIt(t *testing.T) {
	store, storage, c := newStoreWithClock()
	ctx := context.Background()
	require.NotNil(t, store.Create(ctx, "k", draft, time.Minute))

	// storage clock is frozen, only the store sees time pass
	frozen := c.now()
	storage.now = func() time.Time { return frozen }
	c.advance(2 * time.Minute)

	assert.Nil(t, store.Read(ctx, "k"))
	_, ok, err := storage.GetItem(ctx, itemPrefix+"k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateNeverFails(t *testing.T) {
	store, _, _ := newStoreWithClock()
	ctx := context.Background()

	assert.Nil(t, store.Create(ctx, "k", draft, 0))
	assert.Nil(t, store.Create(ctx, "k", draft, -time.Second))
	assert.Nil(t, store.Create(ctx, "", draft, time.Minute))
	assert.Nil(t, store.Create(ctx, "k", Draft{SourceApp: draft.SourceApp, BusinessID: "b", Data: json.RawMessage(`{not json`)}, time.Minute))
	assert.Nil(t, store.Create(ctx, "k", Draft{SourceApp: draft.SourceApp, BusinessID: "b", Data: json.RawMessage(`null`)}, time.Minute))
	assert.Nil(t, store.Create(ctx, "k", Draft{SourceApp: draft.SourceApp, BusinessID: "b", Data: json.RawMessage(`42`)}, time.Minute))
	assert.Nil(t, store.Create(ctx, "k", Draft{SourceApp: "OBD_NOPE", BusinessID: "b", Data: draft.Data}, time.Minute))

	noStorage := NewStore(nil)
	assert.Nil(t, noStorage.Create(ctx, "k", draft, time.Minute))
	assert.Nil(t, noStorage.Read(ctx, "k"))
	assert.NoError(t, noStorage.Clear(ctx, "k"))

	failing := NewStore(failingStorage{})
	assert.Nil(t, failing.Create(ctx, "k", draft, time.Minute))
	assert.Nil(t, failing.Read(ctx, "k"))
}

func TestCreateClampsTTL(t *testing.T) {
	c := &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(NewMemoryStorage(), WithClock(c.now), WithMaxTTL(time.Hour))
	p := store.Create(context.Background(), "k", draft, 48*time.Hour)
	require.NotNil(t, p)
	assert.Equal(t, c.now().Add(time.Hour), p.ExpiresAt)
}

func TestReadDropsUndecodable(t *testing.T) {
	store, storage, _ := newStoreWithClock()
	ctx := context.Background()
	require.NoError(t, storage.SetItem(ctx, itemPrefix+"k", "{garbage", 0))

	assert.Nil(t, store.Read(ctx, "k"))
	assert.Zero(t, storage.Len())
}

func TestClearIsIdempotent(t *testing.T) {
	store, storage, _ := newStoreWithClock()
	ctx := context.Background()
	require.NotNil(t, store.Create(ctx, "k", draft, time.Minute))

	require.NoError(t, store.Clear(ctx, "k"))
	require.NoError(t, store.Clear(ctx, "k"))
	assert.Nil(t, store.Read(ctx, "k"))
	assert.Zero(t, storage.Len())
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("success consumes once", func(t *testing.T) {
		store, _, _ := newStoreWithClock()
		created := store.Create(ctx, "k", draft, time.Minute)
		require.NotNil(t, created)

		res := store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-1", ExpectedSourceApp: model.AppReviewResponder})
		assert.True(t, res.Applied)
		assert.Equal(t, created.ID, res.Payload.ID)
		assert.Nil(t, store.Read(ctx, "k"))

		again := store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-1"})
		assert.Equal(t, ApplyResult{}, again)
	})

	t.Run("replayed payload id is rejected", func(t *testing.T) {
		store, storage, _ := newStoreWithClock()
		created := store.Create(ctx, "k", draft, time.Minute)
		require.NotNil(t, created)
		raw, _, _ := storage.GetItem(ctx, itemPrefix+"k")

		require.True(t, store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-1"}).Applied)

		// a refresh restores the same serialized payload
		require.NoError(t, storage.SetItem(ctx, itemPrefix+"k", raw, time.Minute))
		res := store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-1"})
		assert.False(t, res.Applied)
		assert.Equal(t, ReasonInvalidPayload, res.Reason)
		assert.Nil(t, store.Read(ctx, "k"))
	})

	t.Run("different business is cleared silently", func(t *testing.T) {
		store, _, _ := newStoreWithClock()
		require.NotNil(t, store.Create(ctx, "k", draft, time.Minute))

		res := store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-2"})
		assert.True(t, res.Found)
		assert.False(t, res.Applied)
		assert.Nil(t, res.Payload)
		assert.Equal(t, ReasonTenantMismatch, res.Reason)
		assert.Equal(t, "This suggestion is for a different business.", res.Notice)
		assert.Nil(t, store.Read(ctx, "k"))
	})
}

func TestDismiss(t *testing.T) {
	store, storage, _ := newStoreWithClock()
	ctx := context.Background()
	require.NotNil(t, store.Create(ctx, "k", draft, time.Minute))
	raw, _, _ := storage.GetItem(ctx, itemPrefix+"k")

	require.NoError(t, store.Dismiss(ctx, "k"))
	assert.Nil(t, store.Read(ctx, "k"))
	require.NoError(t, store.Dismiss(ctx, "k"))

	require.NoError(t, storage.SetItem(ctx, itemPrefix+"k", raw, time.Minute))
	res := store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-1"})
	assert.Equal(t, ReasonInvalidPayload, res.Reason)
}

type outcomes map[string]int

func (o outcomes) HandoffOutcome(op, outcome string) { o[op+"/"+outcome]++ }

func TestObserver(t *testing.T) {
	seen := outcomes{}
	store := NewStore(NewMemoryStorage(), WithObserver(seen))
	ctx := context.Background()

	store.Create(ctx, "k", draft, 0)
	store.Create(ctx, "k", draft, time.Minute)
	store.Apply(ctx, "k", ValidateOptions{BusinessID: "biz-2"})

	assert.Equal(t, 1, seen["create/skipped"])
	assert.Equal(t, 1, seen["create/ok"])
	assert.Equal(t, 1, seen["apply/tenant_mismatch"])
}

type failingStorage struct{}

var errStorage = errors.New("quota exceeded")

func (failingStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errStorage
}
func (failingStorage) SetItem(context.Context, string, string, time.Duration) error {
	return errStorage
}
func (failingStorage) RemoveItem(context.Context, string) error { return errStorage }
