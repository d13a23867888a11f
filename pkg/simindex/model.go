package simindex

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// EmbeddingDao maps to the 'face_embeddings' table. The vector column is left
// unsized so one schema serves any extractor dimension.
type EmbeddingDao struct {
	bun.BaseModel `bun:"table:face_embeddings,alias:fe"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Username      string          `bun:"username,unique,notnull,type:varchar(255)"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toEmbeddingDao(username string, embedding identity.Embedding, now time.Time) *EmbeddingDao {
	return &EmbeddingDao{
		Username:  username,
		Embedding: pgvector.NewVector(toFloat32(embedding)),
		CreatedAt: now,
	}
}

func fromEmbeddingDao(dao *EmbeddingDao) *identity.Record {
	return &identity.Record{
		Username:  dao.Username,
		Embedding: fromFloat32(dao.Embedding.Slice()),
		CreatedAt: dao.CreatedAt,
	}
}
