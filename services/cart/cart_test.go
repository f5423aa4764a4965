package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"coolie/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	mu    sync.Mutex
	snaps map[string]models.CartSnapshot
}

func newMemRepo() *memRepo { return &memRepo{snaps: map[string]models.CartSnapshot{}} }

func (m *memRepo) Get(ctx context.Context, userID string) (*models.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[userID]
	if !ok {
		return nil, nil
	}
	s.Items = append([]models.CartItem(nil), s.Items...)
	s.QuantityOverrides = copyOverrides(s.QuantityOverrides)
	return &s, nil
}

func (m *memRepo) Save(ctx context.Context, snap *models.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *snap
	s.Items = append([]models.CartItem(nil), snap.Items...)
	s.QuantityOverrides = copyOverrides(snap.QuantityOverrides)
	m.snaps[snap.UserID] = s
	return nil
}

func copyOverrides(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// fakeRemote records operations in order and keeps a server-side item list.
// Like the real cart service it does not store prices.
type fakeRemote struct {
	ops      []string
	items    []models.CartItem
	clearErr error
	addErr   error
	nextID   int
}

func (f *fakeRemote) Fetch(ctx context.Context, userID string) ([]models.CartItem, error) {
	f.ops = append(f.ops, "fetch")
	return append([]models.CartItem{}, f.items...), nil
}

func (f *fakeRemote) Create(ctx context.Context, userID string, items []models.CartItem) error {
	f.ops = append(f.ops, "create")
	if f.addErr != nil {
		return f.addErr
	}
	for _, it := range items {
		f.nextID++
		it.ID = "item-" + strconv.Itoa(f.nextID)
		it.PriceAtAdd = 0
		f.items = append(f.items, it)
	}
	return nil
}

func (f *fakeRemote) Clear(ctx context.Context, userID string) error {
	f.ops = append(f.ops, "clear")
	if f.clearErr != nil {
		return f.clearErr
	}
	f.items = nil
	return nil
}

func (f *fakeRemote) RemoveItem(ctx context.Context, userID, itemID string) error {
	f.ops = append(f.ops, "remove")
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeRemote) count(op string) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func newTestService() (*Service, *fakeRemote, *memRepo) {
	remote := &fakeRemote{}
	repo := newMemRepo()
	inv := NewInvalidator(remote, repo, zap.NewNop())
	return NewService(remote, repo, inv, zap.NewNop()), remote, repo
}

func TestInvalidatorIdempotent(t *testing.T) {
	svc, remote, repo := newTestService()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &models.CartSnapshot{UserID: "u1", LocationFingerprint: "500072"}))

	cleared, err := svc.Invalidator.Check(ctx, "u1", "500034")
	require.NoError(t, err)
	assert.True(t, cleared)

	cleared, err = svc.Invalidator.Check(ctx, "u1", "500034")
	require.NoError(t, err)
	assert.False(t, cleared)

	assert.Equal(t, 1, remote.count("clear"))
}

func TestInvalidatorSameLocationKeepsFreshCart(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1"})
	require.NoError(t, err)

	cleared, err := svc.Invalidator.Check(ctx, "u1", "500072")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Zero(t, remote.count("clear"))
	assert.Len(t, remote.items, 1)
}

func TestInvalidatorAdoptsFirstFingerprint(t *testing.T) {
	svc, remote, repo := newTestService()
	ctx := context.Background()

	cleared, err := svc.Invalidator.Check(ctx, "u1", "500072")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Zero(t, remote.count("clear"))

	snap, _ := repo.Get(ctx, "u1")
	require.NotNil(t, snap)
	assert.Equal(t, "500072", snap.LocationFingerprint)
}

func TestLocationChangeClearsBeforeAdd(t *testing.T) {
	svc, remote, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1"})
	require.NoError(t, err)
	remote.ops = nil

	snap, err := svc.Add(ctx, "u1", "500034", models.CartItem{ServiceID: "v2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"clear", "create", "fetch"}, remote.ops)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "v2", snap.Items[0].ServiceID)
	assert.Equal(t, "500034", snap.LocationFingerprint)

	stored, _ := repo.Get(ctx, "u1")
	assert.Equal(t, "500034", stored.LocationFingerprint)
}

func TestClearFailureKeepsLocalState(t *testing.T) {
	svc, remote, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1"})
	require.NoError(t, err)

	remote.clearErr = errors.New("cart service unavailable")
	_, err = svc.Add(ctx, "u1", "500034", models.CartItem{ServiceID: "v2"})

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "clear", me.Op)

	stored, _ := repo.Get(ctx, "u1")
	assert.Equal(t, "500072", stored.LocationFingerprint, "fingerprint must not advance")
	assert.Len(t, stored.Items, 1, "local items must not be optimistically cleared")
	assert.Equal(t, 1, remote.count("create"), "add must be refused")

	// Retry succeeds once the service recovers.
	remote.clearErr = nil
	cleared, err := svc.Invalidator.Check(ctx, "u1", "500034")
	require.NoError(t, err)
	assert.True(t, cleared)
}

func TestAddRequiresResolvedLocation(t *testing.T) {
	svc, remote, _ := newTestService()
	_, err := svc.Add(context.Background(), "u1", "", models.CartItem{ServiceID: "v1"})
	assert.ErrorIs(t, err, ErrLocationUnresolved)
	assert.Empty(t, remote.ops)
}

func TestAddFailureIsMutationError(t *testing.T) {
	svc, remote, _ := newTestService()
	remote.addErr = errors.New("boom")

	_, err := svc.Add(context.Background(), "u1", "500072", models.CartItem{ServiceID: "v1"})
	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "add", me.Op)
	assert.Zero(t, remote.count("fetch"))
}

func TestRemoveRefetches(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1"})
	require.NoError(t, err)
	snap, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v2"})
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	snap, err = svc.Remove(ctx, "u1", snap.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "v2", snap.Items[0].ServiceID)
	assert.Equal(t, "fetch", remote.ops[len(remote.ops)-1])
}

func TestUpdateQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	snap, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1", PriceAtAdd: 100})
	require.NoError(t, err)
	itemID := snap.Items[0].ID

	snap, err = svc.UpdateQuantity(ctx, "u1", itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.Equal(t, 300.0, snap.TotalPrice())

	snap, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity, "re-fetch must keep the local quantity")
	assert.Equal(t, 300.0, snap.TotalPrice())

	_, err = svc.UpdateQuantity(ctx, "u1", itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.UpdateQuantity(ctx, "u1", "missing", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestExplicitClear(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1"})
	require.NoError(t, err)

	snap, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Equal(t, "500072", snap.LocationFingerprint)
	assert.Empty(t, remote.items)
}

func TestHTTPClientDecodesPopulatedItems(t *testing.T) {
	var created map[string]interface{}
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/cart/u1":
			_, _ = w.Write([]byte(`[{"_id":"cart1","userId":"u1","items":[
				{"_id":"i1","serviceId":{"_id":"v1","serviceVariants":[{"price":499}]},"categoryId":"c1","subCategoryId":{"_id":"s1"},"quantity":2},
				{"_id":"i2","serviceId":"v2","quantity":1}]}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/cart/u2":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/cart/create-cart":
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &created)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			if r.URL.Path == "/cart/broken" {
				w.WriteHeader(http.StatusInternalServerError)
			}
		}
	}))
	defer srv.Close()
	c := NewHTTPClient(srv.URL, srv.Client())
	ctx := context.Background()

	items, err := c.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.CartItem{ID: "i1", ServiceID: "v1", CategoryID: "c1", SubCategoryID: "s1", Quantity: 2, PriceAtAdd: 499}, items[0])
	assert.Equal(t, "v2", items[1].ServiceID)

	items, err = c.Fetch(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, c.Create(ctx, "u1", []models.CartItem{{ServiceID: "v1", CategoryID: "c1", SubCategoryID: "s1", Quantity: 1}}))
	assert.Equal(t, "u1", created["userId"])
	require.Len(t, created["items"], 1)

	require.NoError(t, c.Clear(ctx, "u1"))
	require.NoError(t, c.RemoveItem(ctx, "u1", "i1"))
	assert.Error(t, c.Clear(ctx, "broken"))
	assert.Equal(t, []string{"/cart/u1", "/cart/u1/i1", "/cart/broken"}, deleted)
}

func TestQuantityOverrideSurvivesAddAndDropsWithItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	snap, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1", PriceAtAdd: 100})
	require.NoError(t, err)
	first := snap.Items[0].ID

	_, err = svc.UpdateQuantity(ctx, "u1", first, 4)
	require.NoError(t, err)

	snap, err = svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v2", PriceAtAdd: 50})
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 4, snap.Items[0].Quantity)
	assert.Equal(t, 1, snap.Items[1].Quantity)
	assert.Equal(t, 450.0, snap.TotalPrice())

	snap, err = svc.Remove(ctx, "u1", first)
	require.NoError(t, err)
	assert.Empty(t, snap.QuantityOverrides)

	_, err = svc.UpdateQuantity(ctx, "u1", snap.Items[0].ID, 2)
	require.NoError(t, err)
	cleared, err := svc.Invalidator.Check(ctx, "u1", "500034")
	require.NoError(t, err)
	assert.True(t, cleared)
	snap, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.QuantityOverrides)
}

// cartServer mimics the remote cart service: it stores line items without
// prices and returns the service id unpopulated.
type cartServer struct {
	mu      sync.Mutex
	items   []map[string]interface{}
	created []map[string]interface{}
}

func (cs *cartServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/cart/create-cart":
		var body struct {
			Items []map[string]interface{} `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, it := range body.Items {
			cs.created = append(cs.created, it)
			cs.items = append(cs.items, map[string]interface{}{
				"_id":       "line-" + strconv.Itoa(len(cs.items)+1),
				"serviceId": it["serviceId"],
				"quantity":  it["quantity"],
			})
		}
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet && r.URL.Path == "/cart/u1":
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"_id": "cart1", "userId": "u1", "items": cs.items}})
	case r.Method == http.MethodDelete && r.URL.Path == "/cart/u1":
		cs.items = nil
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestAddKeepsPriceWhenRemoteDoesNotEchoIt(t *testing.T) {
	cs := &cartServer{}
	srv := httptest.NewServer(cs)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.Client())
	repo := newMemRepo()
	svc := NewService(client, repo, NewInvalidator(client, repo, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	snap, err := svc.Add(ctx, "u1", "500072", models.CartItem{ServiceID: "v1", PriceAtAdd: 499})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 499.0, snap.Items[0].PriceAtAdd)
	assert.Equal(t, 499.0, snap.TotalPrice())
	require.Len(t, cs.created, 1)
	assert.Equal(t, 499.0, cs.created[0]["priceAtAdd"])

	_, err = svc.UpdateQuantity(ctx, "u1", snap.Items[0].ID, 3)
	require.NoError(t, err)
	snap, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.Equal(t, 1497.0, snap.TotalPrice())
}
