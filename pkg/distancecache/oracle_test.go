package distancecache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
)

func ticket(id string, lat, lon float64) model.Ticket {
	return model.Ticket{ID: id, Location: model.Location{Lat: lat, Lon: lon}}
}

func TestCanonicalKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, CanonicalKey("a", "b"), CanonicalKey("b", "a"))
}

func TestOracle_DistanceSameTicketIsZero(t *testing.T) {
	o := NewOracle(nil, 30, nil)
	a := ticket("t1", 1, 1)
	km, min, err := o.Distance(context.Background(), a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, km)
	assert.Equal(t, 0.0, min)
}

// Distance must be symmetric and non-negative.
func TestOracle_DistanceSymmetricAndNonNegative(t *testing.T) {
	o := NewOracle(nil, 30, nil)
	a := ticket("a", 0, 0)
	b := ticket("b", 1, 1)

	kmAB, minAB, err := o.Distance(context.Background(), a, b)
	require.NoError(t, err)
	kmBA, minBA, err := o.Distance(context.Background(), b, a)
	require.NoError(t, err)

	assert.Equal(t, kmAB, kmBA)
	assert.Equal(t, minAB, minBA)
	assert.GreaterOrEqual(t, kmAB, 0.0)
	assert.GreaterOrEqual(t, minAB, 0.0)
}

type fakeStore struct {
	gets map[string][2]float64
	puts map[string][2]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{gets: map[string][2]float64{}, puts: map[string][2]float64{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (float64, float64, bool, error) {
	v, ok := f.gets[key]
	return v[0], v[1], ok, nil
}

func (f *fakeStore) Put(ctx context.Context, key string, km, minutes float64) error {
	f.puts[key] = [2]float64{km, minutes}
	return nil
}

func TestOracle_UsesStoreOnMissThenPopulatesStore(t *testing.T) {
	store := newFakeStore()
	o := NewOracle(store, 30, nil)
	a := ticket("a", 0, 0)
	b := ticket("b", 1, 1)

	_, _, err := o.Distance(context.Background(), a, b)
	require.NoError(t, err)

	key := CanonicalKey("a", "b")
	_, ok := store.puts[key]
	assert.True(t, ok, "expected computed distance to be written back to the store")
}

type erroringStore struct{}

func (erroringStore) Get(ctx context.Context, key string) (float64, float64, bool, error) {
	return 0, 0, false, errors.New("connection refused")
}
func (erroringStore) Put(ctx context.Context, key string, km, minutes float64) error {
	return errors.New("connection refused")
}

// Transient store failure degrades to compute-only rather than failing the run.
func TestOracle_DegradesToComputeOnlyWhenStoreFails(t *testing.T) {
	o := NewOracle(erroringStore{}, 30, nil)
	a := ticket("a", 0, 0)
	b := ticket("b", 1, 1)

	km, min, err := o.Distance(context.Background(), a, b)
	require.NoError(t, err)
	assert.Greater(t, km, 0.0)
	assert.Greater(t, min, 0.0)
}

func TestOracle_Matrix(t *testing.T) {
	o := NewOracle(nil, 30, nil)
	tickets := []model.Ticket{ticket("a", 0, 0), ticket("b", 0, 1), ticket("c", 1, 0)}
	m, err := o.Matrix(context.Background(), tickets)
	require.NoError(t, err)
	assert.Len(t, m, 3)
}
