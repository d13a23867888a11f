package simindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// fakeQdrant keeps points in memory keyed by point uuid.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]uint64
	points      map[string]*qdrant.RetrievedPoint
	err         error
	healthCalls int
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{
		collections: make(map[string]uint64),
		points:      make(map[string]*qdrant.RetrievedPoint),
	}
}

func (f *fakeQdrant) CollectionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[name]
	return ok, f.err
}

func (f *fakeQdrant) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	params := req.GetVectorsConfig().GetParams()
	if params.GetDistance() != qdrant.Distance_Euclid {
		return fmt.Errorf("unexpected distance %v", params.GetDistance())
	}
	f.collections[req.GetCollectionName()] = params.GetSize()
	return nil
}

func (f *fakeQdrant) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range req.GetPoints() {
		v := p.GetVectors().GetVector()
		data := v.GetDense().GetData()
		if len(data) == 0 {
			data = v.GetData()
		}
		f.points[p.GetId().GetUuid()] = &qdrant.RetrievedPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Vectors: &qdrant.VectorsOutput{
				VectorsOptions: &qdrant.VectorsOutput_Vector{Vector: &qdrant.VectorOutput{Data: data}},
			},
		}
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Get(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*qdrant.RetrievedPoint
	for _, id := range req.GetIds() {
		if p, ok := f.points[id.GetUuid()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeQdrant) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, id := range req.GetPoints().GetPoints().GetIds() {
		delete(f.points, id.GetUuid())
	}
	if filter := req.GetPoints().GetFilter(); filter != nil {
		for id, p := range f.points {
			if matchesFilter(p, filter) {
				delete(f.points, id)
			}
		}
	}
	return &qdrant.UpdateResult{}, nil
}

// matchesFilter understands the has_id and integer match conditions the
// store sends.
func matchesFilter(p *qdrant.RetrievedPoint, filter *qdrant.Filter) bool {
	for _, c := range filter.GetMust() {
		if ids := c.GetHasId().GetHasId(); len(ids) > 0 {
			found := false
			for _, id := range ids {
				if id.GetUuid() == p.GetId().GetUuid() {
					found = true
				}
			}
			if !found {
				return false
			}
		}
		if field := c.GetField(); field != nil {
			if p.GetPayload()[field.GetKey()].GetIntegerValue() != field.GetMatch().GetInteger() {
				return false
			}
		}
	}
	return true
}

func (f *fakeQdrant) Scroll(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.points))
	for id := range f.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if off := req.GetOffset().GetUuid(); off != "" {
		start = sort.SearchStrings(ids, off)
	}
	end := start + int(req.GetLimit())
	if end > len(ids) {
		end = len(ids)
	}
	out := make([]*qdrant.RetrievedPoint, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, f.points[id])
	}
	return out, nil
}

func (f *fakeQdrant) Count(_ context.Context, req *qdrant.CountPoints) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.GetFilter() == nil {
		return uint64(len(f.points)), f.err
	}
	var n uint64
	for _, p := range f.points {
		if matchesFilter(p, req.GetFilter()) {
			n++
		}
	}
	return n, f.err
}

func (f *fakeQdrant) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthCalls++
	return &qdrant.HealthCheckReply{}, f.err
}

func (f *fakeQdrant) Close() error { return nil }

func TestQdrantStore_EnsureCollection(t *testing.T) {
	client := newFakeQdrant()
	store := newQdrantStore(client, "faces", 4, zap.NewNop())

	require.NoError(t, store.EnsureCollection(context.Background()))
	require.Equal(t, uint64(4), client.collections["faces"])
	// second call is a no-op
	require.NoError(t, store.EnsureCollection(context.Background()))
}

func TestQdrantStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeQdrant()
	store := newQdrantStore(client, "faces", 2, zap.NewNop())

	_, err := store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "alice", identity.Embedding{0.5, -1.25}))
	require.NoError(t, store.Put(ctx, "alice", identity.Embedding{0.25, 2}))

	rec, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, identity.Embedding{0.25, 2}, rec.Embedding)
	assert.False(t, rec.CreatedAt.IsZero())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, "alice"))
	_, err = store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Put(ctx, "bob", identity.Embedding{1}), ErrDimensions)
}

func TestQdrantStore_DeleteIfCreatedAt(t *testing.T) {
	ctx := context.Background()
	client := newFakeQdrant()
	store := newQdrantStore(client, "faces", 1, zap.NewNop())

	require.NoError(t, store.Put(ctx, "alice", identity.Embedding{1}))
	require.NoError(t, store.Put(ctx, "bob", identity.Embedding{2}))
	first, err := store.Get(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "alice", identity.Embedding{3}))
	second, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	require.False(t, first.CreatedAt.Equal(second.CreatedAt))

	deleted, err := store.DeleteIfCreatedAt(ctx, "alice", first.CreatedAt)
	require.NoError(t, err)
	assert.False(t, deleted, "a rewritten record must survive")
	_, err = store.Get(ctx, "alice")
	require.NoError(t, err)

	deleted, err = store.DeleteIfCreatedAt(ctx, "alice", second.CreatedAt)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = store.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "bob")
	require.NoError(t, err, "other points are untouched")
}

func TestQdrantStore_UsernamesPagesThroughCollection(t *testing.T) {
	ctx := context.Background()
	client := newFakeQdrant()
	store := newQdrantStore(client, "faces", 1, zap.NewNop())

	want := make([]string, 0, scrollPageSize+10)
	for i := 0; i < scrollPageSize+10; i++ {
		name := fmt.Sprintf("user-%03d", i)
		want = append(want, name)
		require.NoError(t, store.Put(ctx, name, identity.Embedding{float64(i)}))
	}

	got, err := store.Usernames(ctx)
	require.NoError(t, err)
	sort.Strings(got)
	require.Equal(t, want, got)
}

func TestQdrantStore_UnavailableErrors(t *testing.T) {
	client := newFakeQdrant()
	client.err = status.Error(codes.Unavailable, "connection refused")
	store := newQdrantStore(client, "faces", 1, zap.NewNop())

	_, err := store.Get(context.Background(), "alice")
	require.ErrorIs(t, err, ErrUnavailable)

	client.err = status.Error(codes.InvalidArgument, "bad vector")
	err = store.Put(context.Background(), "alice", identity.Embedding{1})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnavailable))
}

func TestQdrantStore_HealthIsCached(t *testing.T) {
	client := newFakeQdrant()
	store := newQdrantStore(client, "faces", 1, zap.NewNop())

	require.NoError(t, store.Healthy(context.Background()))
	require.NoError(t, store.Healthy(context.Background()))
	require.Equal(t, 1, client.healthCalls)
}

func TestPointID_StablePerUsername(t *testing.T) {
	assert.Equal(t, pointID("alice").GetUuid(), pointID("alice").GetUuid())
	assert.NotEqual(t, pointID("alice").GetUuid(), pointID("bob").GetUuid())
}
