package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/pgutil"
)

type sampleDao struct {
	bun.BaseModel `bun:"table:sample_rows"`
	ID            int64  `bun:",pk,autoincrement"`
	Label         string `bun:",notnull,type:varchar(100)"`
	Score         int    `bun:",nullzero"`
}

func TestModelIndexName(t *testing.T) {
	db := bun.NewDB(nil, pgdialect.New())

	tests := []struct {
		model  any
		column string
		want   string
	}{
		{&sampleDao{}, "label", "idx_sample_rows_label"},
		{&sampleDao{}, "score", "idx_sample_rows_score"},
	}
	for _, tt := range tests {
		got, err := modelIndexName(db, tt.model, tt.column)
		if err != nil {
			t.Fatalf("modelIndexName() failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("modelIndexName() = %q, want %q", got, tt.want)
		}
	}

	if _, err := modelIndexName(db, nil, "id"); err == nil {
		t.Error("expected error for nil model")
	}
}

func TestConnectDB_InvalidHost(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "invalid-host-that-does-not-exist",
		Port:     5432,
		User:     "test",
		Password: "test",
		Database: "test",
		SSLMode:  "disable",
	}

	db, err := pgutil.ConnectDB(context.Background(), cfg, zap.NewNop())
	if err == nil {
		_ = db.Close()
		t.Error("ConnectDB() should fail with invalid host")
	}
}

func TestCreateSchemaAndDropTables(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := CreateSchema(ctx, db, &sampleDao{}); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "sample_rows")

	// idempotent
	if err := CreateSchema(ctx, db, &sampleDao{}); err != nil {
		t.Errorf("CreateSchema() second call failed: %v", err)
	}

	if err := DropTables(ctx, db, &sampleDao{}); err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "sample_rows")

	if err := DropTables(ctx, db, &sampleDao{}); err != nil {
		t.Errorf("DropTables() second call failed: %v", err)
	}
}

func TestCreateModelIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := CreateSchema(ctx, db, &sampleDao{}); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	if err := CreateModelIndexes(ctx, db, &sampleDao{}, "label", "score"); err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}

	pgutil.AssertIndexExists(t, db, "idx_sample_rows_label")
	pgutil.AssertIndexExists(t, db, "idx_sample_rows_score")

	if err := CreateModelIndexes(ctx, db, &sampleDao{}, "label"); err != nil {
		t.Errorf("CreateModelIndexes() second call failed: %v", err)
	}
}
