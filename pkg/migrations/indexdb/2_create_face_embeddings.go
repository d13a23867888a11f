package indexdb

import (
	"context"
	"log"

	mghelper "github.com/chainsafe/faceauth-middleware/pkg/pgutil/migrations"
	"github.com/chainsafe/faceauth-middleware/pkg/simindex"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating face_embeddings table...")
		if err := mghelper.CreateSchema(ctx, db, &simindex.EmbeddingDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &simindex.EmbeddingDao{}, "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping face_embeddings table...")
		return mghelper.DropTables(ctx, db, &simindex.EmbeddingDao{})
	})
}
