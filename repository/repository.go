// Package repository is the data-access facade of the slow-control registry.
// It resolves dotted nomenclature strings into parent chains, enforces
// per-parent uniqueness on create, and maps fetched rows into validated
// model entities.
//
// Lookups follow a two-tier contract: a missing ancestor in a dotted name is
// an error (ErrAncestorNotFound), while a missing leaf entity is a normal
// empty result reported as a nil entity with a nil error.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"slowctl/models"

	"gorm.io/gorm"
)

// Sentinel errors for data-access failures
var (
	// ErrDuplicate reports a create for a name that already exists under
	// the same parent
	ErrDuplicate = errors.New("entity already exists")

	// ErrAncestorNotFound reports a dotted name whose parent chain is
	// broken at some level
	ErrAncestorNotFound = errors.New("ancestor not found")

	// ErrMissingRelation reports a nil required related entity passed as
	// an argument
	ErrMissingRelation = errors.New("required relation missing")
)

// Repository exposes create/get/list operations for every registry entity
// plus the measurement log. It is not safe for unsynchronized concurrent
// use; callers needing concurrency must serialize access externally.
type Repository struct {
	db           *gorm.DB
	recordsTable string
}

// New creates a repository over an established database connection.
// recordsTable selects the measurement table (production records table or
// the development playground, see config.RecordsTable).
func New(db *gorm.DB, recordsTable string) *Repository {
	if recordsTable == "" {
		recordsTable = models.Record{}.TableName()
	}
	return &Repository{db: db, recordsTable: recordsTable}
}

// records returns a query scoped to the configured measurement table
func (r *Repository) records() *gorm.DB {
	return r.db.Table(r.recordsTable)
}

// splitNomenclature splits a dotted name and verifies it has exactly one
// component per hierarchy level. Literal dots inside names are not supported.
func splitNomenclature(name string, levels int) ([]string, error) {
	parts := strings.Split(name, ".")
	if len(parts) != levels {
		return nil, fmt.Errorf("%w: nomenclature %q must have %d dotted components, got %d",
			models.ErrValidation, name, levels, len(parts))
	}
	return parts, nil
}

// isNotFound reports whether a query came back empty
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
