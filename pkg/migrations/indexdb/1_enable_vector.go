package indexdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("enabling pgvector extension...")
		_, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping pgvector extension...")
		_, err := db.ExecContext(ctx, "DROP EXTENSION IF EXISTS vector")
		return err
	})
}
