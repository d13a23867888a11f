// Package indexdb holds all the migrations for the similarity index database
package indexdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the similarity index database
var Migrations = migrate.NewMigrations()
