package main

import (
	"context"
	"flag"
	"log"

	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/migrations/indexdb"
	"github.com/chainsafe/faceauth-middleware/pkg/pgutil"
	mghelper "github.com/chainsafe/faceauth-middleware/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIServer(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if cfg.Index.Driver != config.IndexDriverPostgres {
		log.Fatalf("index driver %q has no database to migrate", cfg.Index.Driver)
	}

	// Connect to database
	db, err := pgutil.ConnectDB(context.Background(), &cfg.Index.Database, zap.NewNop())
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for similarity index database (%s)...\n", cfg.Index.Database.Database)

	migrator := migrate.NewMigrator(db, indexdb.Migrations)

	// Run migrations with args
	err = mghelper.RunMigrations(migrator, flag.Args()...)
	if err != nil {
		mghelper.Exitf(err.Error())
	}
}
