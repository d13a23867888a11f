package simindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/health"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

const (
	payloadUsername  = "username"
	payloadCreatedAt = "created_at_unix_ns"
	scrollPageSize   = 256
)

// pointNamespace seeds the name-based point ids, one per username.
var pointNamespace = uuid.MustParse("6f1c9a52-6b0e-4b8e-9d1f-3c7a2e5d8b40")

// qdrantAPI is the part of *qdrant.Client the store uses.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// QdrantStore keeps embeddings in a Qdrant collection, one point per username.
type QdrantStore struct {
	client     qdrantAPI
	collection string
	dims       int
	health     *health.Cache
	logger     *zap.Logger
}

var _ Index = (*QdrantStore)(nil)

// NewQdrantStore connects to Qdrant over gRPC.
func NewQdrantStore(cfg *config.QdrantConfig, dims int, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return newQdrantStore(client, cfg.Collection, dims, logger), nil
}

func newQdrantStore(client qdrantAPI, collection string, dims int, logger *zap.Logger) *QdrantStore {
	s := &QdrantStore{
		client:     client,
		collection: collection,
		dims:       dims,
		logger:     logger,
	}
	s.health = health.NewCache(func(ctx context.Context) error {
		if _, err := s.client.HealthCheck(ctx); err != nil {
			return fmt.Errorf("qdrant unhealthy: %w", err)
		}
		return nil
	}, 5*time.Second, 3*time.Second)
	return s
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return s.wrap("check collection", err)
	}
	if exists {
		s.logger.Info("Qdrant collection already exists", zap.String("collection", s.collection))
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dims), //nolint:gosec // validated > 0 by config
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return s.wrap("create collection", err)
	}
	s.logger.Info("Created Qdrant collection",
		zap.String("collection", s.collection),
		zap.Int("dimensions", s.dims))
	return nil
}

func (s *QdrantStore) Put(ctx context.Context, username string, embedding identity.Embedding) error {
	if err := checkDimensions(s.dims, embedding); err != nil {
		return err
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      pointID(username),
			Vectors: qdrant.NewVectorsDense(toFloat32(embedding)),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadUsername:  username,
				payloadCreatedAt: time.Now().UnixNano(),
			}),
		}},
	})
	if err != nil {
		return s.wrap("upsert", err)
	}
	return nil
}

func (s *QdrantStore) Get(ctx context.Context, username string) (*identity.Record, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{pointID(username)},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, s.wrap("get", err)
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}

	p := points[0]
	data := denseData(p.GetVectors().GetVector())
	if len(data) == 0 {
		return nil, fmt.Errorf("qdrant point for %q has no vector", username)
	}
	return &identity.Record{
		Username:  username,
		Embedding: fromFloat32(data),
		CreatedAt: time.Unix(0, p.GetPayload()[payloadCreatedAt].GetIntegerValue()).UTC(),
	}, nil
}

func (s *QdrantStore) Delete(ctx context.Context, username string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{pointID(username)}},
			},
		},
	})
	if err != nil {
		return s.wrap("delete", err)
	}
	return nil
}

// DeleteIfCreatedAt deletes through a filter on the point id and its creation
// stamp. Qdrant does not report how many points a delete removed, so the
// match is counted first; the delete itself stays conditional.
func (s *QdrantStore) DeleteIfCreatedAt(ctx context.Context, username string, createdAt time.Time) (bool, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewHasID(pointID(username)),
			qdrant.NewMatchInt(payloadCreatedAt, createdAt.UnixNano()),
		},
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return false, s.wrap("count", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return false, s.wrap("delete", err)
	}
	return true, nil
}

// Usernames pages through the collection. Scroll offsets are inclusive, so
// every page after the first starts with the previous page's last point.
func (s *QdrantStore) Usernames(ctx context.Context) ([]string, error) {
	var (
		out    []string
		offset *qdrant.PointId
	)
	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			WithPayload:    qdrant.NewWithPayloadInclude(payloadUsername),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return nil, s.wrap("scroll", err)
		}
		page := points
		if offset != nil && len(page) > 0 {
			page = page[1:]
		}
		for _, p := range page {
			if u := p.GetPayload()[payloadUsername].GetStringValue(); u != "" {
				out = append(out, u)
			}
		}
		if len(points) < scrollPageSize {
			return out, nil
		}
		offset = points[len(points)-1].GetId()
	}
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, s.wrap("count", err)
	}
	return int(n), nil //nolint:gosec
}

// Healthy reports whether Qdrant answers health checks. Results are cached
// briefly and concurrent checks share one call.
func (s *QdrantStore) Healthy(ctx context.Context) error {
	return s.health.Check(ctx)
}

// Close shuts down the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) wrap(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: qdrant %s: %w", ErrUnavailable, op, err)
	default:
		return fmt.Errorf("qdrant %s: %w", op, err)
	}
}

func denseData(v *qdrant.VectorOutput) []float32 {
	if dense := v.GetDense().GetData(); len(dense) > 0 {
		return dense
	}
	return v.GetData()
}

func pointID(username string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(pointNamespace, []byte(username)).String())
}
