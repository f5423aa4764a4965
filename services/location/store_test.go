package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coolie/models"
	"coolie/services/geo"
	"coolie/services/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type coordKey struct{ lat, lng float64 }

// gatedGeo resolves from a table; coordinates with a gate block until it is
// closed.
type gatedGeo struct {
	mu      sync.Mutex
	table   map[coordKey]models.AddressHierarchy
	gates   map[coordKey]chan struct{}
	entered chan coordKey
}

func newGatedGeo() *gatedGeo {
	return &gatedGeo{
		table:   map[coordKey]models.AddressHierarchy{},
		gates:   map[coordKey]chan struct{}{},
		entered: make(chan coordKey, 8),
	}
}

func (g *gatedGeo) Resolve(ctx context.Context, lat, lng float64) (models.AddressHierarchy, error) {
	k := coordKey{lat, lng}
	g.mu.Lock()
	gate := g.gates[k]
	h, ok := g.table[k]
	g.mu.Unlock()
	g.entered <- k
	if gate != nil {
		<-gate
	}
	if !ok {
		return models.AddressHierarchy{}, geo.ErrNoGeocodeResult
	}
	return h, nil
}

type tierTable struct {
	byPostal map[string]models.PriceTier
	err      error
}

func (t *tierTable) Resolve(ctx context.Context, h models.AddressHierarchy) (models.PriceTier, error) {
	if t.err != nil {
		return models.PriceTier{}, t.err
	}
	tier, ok := t.byPostal[h.PostalCode]
	if !ok {
		return models.NoTier(), pricing.ErrPricingNotFound
	}
	return tier, nil
}

type memPersister struct {
	mu    sync.Mutex
	snaps map[string]models.LocationSnapshot
}

func newMemPersister() *memPersister {
	return &memPersister{snaps: map[string]models.LocationSnapshot{}}
}

func (m *memPersister) Load(ctx context.Context, id string) (*models.LocationSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memPersister) Save(ctx context.Context, id string, snap models.LocationSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[id] = snap
	return nil
}

func hierarchy(postal, city string) models.AddressHierarchy {
	return models.AddressHierarchy{
		PostalCode:  postal,
		Locality:    city,
		AdminLevel3: models.NotFound,
		AdminLevel2: city,
		AdminLevel1: "Telangana",
	}
}

func tier(key string) models.PriceTier {
	return models.PriceTier{
		Source:     models.TierCustom,
		Key:        key,
		Records:    []models.PriceRecord{{Category: "Cleaning", SubCategory: "Deep", ServiceName: "Kitchen", Price: 499}},
		ResolvedAt: time.Now(),
	}
}

func newTestStore() (*Store, *gatedGeo, *tierTable, *memPersister) {
	g := newGatedGeo()
	g.table[coordKey{17.4, 78.4}] = hierarchy("500081", "Hyderabad")
	g.table[coordKey{12.9, 77.6}] = hierarchy("560001", "Bengaluru")
	g.table[coordKey{1, 1}] = hierarchy("999999", "Nowhere")
	tiers := &tierTable{byPostal: map[string]models.PriceTier{
		"500081": tier("500081"),
		"560001": tier("560001"),
	}}
	p := newMemPersister()
	return NewStore("sess-1", g, tiers, p, zap.NewNop()), g, tiers, p
}

func TestResolveCommitsAndNotifies(t *testing.T) {
	s, _, _, p := newTestStore()
	var got []models.LocationSnapshot
	s.Subscribe(func(snap models.LocationSnapshot) { got = append(got, snap) })

	snap, err := s.ResolveLocation(context.Background(), 17.4, 78.4)
	require.NoError(t, err)

	assert.True(t, snap.Serving)
	assert.Equal(t, "500081", snap.Fingerprint)
	assert.Equal(t, "Hyderabad", snap.SelectedCity)
	require.Len(t, got, 1)
	assert.Equal(t, snap.Seq, got[0].Seq)
	assert.Equal(t, snap.Fingerprint, p.snaps["sess-1"].Fingerprint)
}

func TestStaleResolveIsDropped(t *testing.T) {
	s, g, _, _ := newTestStore()
	slow := coordKey{17.4, 78.4}
	gate := make(chan struct{})
	g.gates[slow] = gate

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = s.ResolveLocation(context.Background(), slow.lat, slow.lng)
	}()
	<-g.entered

	fast, err := s.ResolveLocation(context.Background(), 12.9, 77.6)
	<-g.entered
	require.NoError(t, err)

	close(gate)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrSuperseded)
	assert.Equal(t, "560001", s.Snapshot().Fingerprint)
	assert.Equal(t, fast.Seq, s.Snapshot().Seq)
}

func TestGeocodeErrorKeepsPriorState(t *testing.T) {
	s, _, _, _ := newTestStore()
	first, err := s.ResolveLocation(context.Background(), 17.4, 78.4)
	require.NoError(t, err)

	_, err = s.ResolveLocation(context.Background(), 0.5, 0.5)
	assert.ErrorIs(t, err, geo.ErrNoGeocodeResult)
	assert.Equal(t, first, s.Snapshot())
}

func TestTransportErrorKeepsPriorState(t *testing.T) {
	s, _, tiers, _ := newTestStore()
	first, err := s.ResolveLocation(context.Background(), 17.4, 78.4)
	require.NoError(t, err)

	tiers.err = &pricing.TransportError{Step: "custom", Key: "560001", Err: errors.New("boom")}
	_, err = s.ResolveLocation(context.Background(), 12.9, 77.6)

	var te *pricing.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, first, s.Snapshot())
}

func TestUnservedLocationCommitsNoneTier(t *testing.T) {
	s, _, _, _ := newTestStore()
	notified := 0
	s.Subscribe(func(models.LocationSnapshot) { notified++ })

	snap, err := s.ResolveLocation(context.Background(), 1, 1)

	assert.ErrorIs(t, err, pricing.ErrPricingNotFound)
	assert.False(t, snap.Serving)
	assert.Equal(t, models.TierNone, snap.Tier.Source)
	assert.Equal(t, "999999", s.Snapshot().Fingerprint)
	assert.Equal(t, 1, notified)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s, _, _, _ := newTestStore()
	notified := 0
	unsubscribe := s.Subscribe(func(models.LocationSnapshot) { notified++ })
	unsubscribe()
	unsubscribe()

	_, err := s.ResolveLocation(context.Background(), 17.4, 78.4)
	require.NoError(t, err)
	assert.Zero(t, notified)
}

func TestSetCity(t *testing.T) {
	s, _, _, _ := newTestStore()

	_, err := s.SetCity(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyCity)

	snap, err := s.SetCity(context.Background(), "Secunderabad", &models.Coordinates{Latitude: 17.4, Longitude: 78.4})
	require.NoError(t, err)
	assert.Equal(t, "Secunderabad", snap.SelectedCity)
	assert.Equal(t, "500081", snap.Fingerprint)

	snap, err = s.SetCity(context.Background(), "Hyderabad", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hyderabad", snap.SelectedCity)
	assert.Equal(t, "500081", snap.Fingerprint)
}

func TestListenerReadsSnapshotWhileAnotherCommitWaits(t *testing.T) {
	s, _, _, _ := newTestStore()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var delivered []uint64
	s.Subscribe(func(snap models.LocationSnapshot) {
		once.Do(func() {
			close(entered)
			<-release
		})
		_ = s.Snapshot()
		mu.Lock()
		delivered = append(delivered, snap.Seq)
		mu.Unlock()
	})

	resolved := make(chan error, 1)
	go func() {
		_, err := s.ResolveLocation(ctx, 17.4, 78.4)
		resolved <- err
	}()
	<-entered

	cityDone := make(chan error, 1)
	go func() {
		_, err := s.SetCity(ctx, "Secunderabad", nil)
		cityDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	read := make(chan models.LocationSnapshot, 1)
	go func() { read <- s.Snapshot() }()
	select {
	case <-read:
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot blocked while a listener was running")
	}

	close(release)
	for _, ch := range []chan error{resolved, cityDone} {
		select {
		case err := <-ch:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("commit did not finish")
		}
	}

	assert.Equal(t, "Secunderabad", s.Snapshot().SelectedCity)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 2)
	assert.Less(t, delivered[0], delivered[1])
}
