package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Migration IDs sort lexically into apply order, so they start with a date.
type Migration struct {
	ID   string
	Name string
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

type registry struct {
	mu         sync.Mutex
	migrations map[string]Migration
}

var migrations = &registry{migrations: make(map[string]Migration)}

// RegisterMigration is called from init functions; a duplicate ID panics.
func RegisterMigration(m Migration) {
	migrations.mu.Lock()
	defer migrations.mu.Unlock()
	if _, exists := migrations.migrations[m.ID]; exists {
		panic(fmt.Sprintf("migration with ID %s already registered", m.ID))
	}
	migrations.migrations[m.ID] = m
}

// Registered returns the registered migration IDs in apply order.
func Registered() []string {
	sorted := migrations.sorted()
	ids := make([]string, 0, len(sorted))
	for _, m := range sorted {
		ids = append(ids, m.ID)
	}
	return ids
}

func (r *registry) sorted() []Migration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

const (
	createVersionTableSQL = `
CREATE TABLE IF NOT EXISTS public.migration_version (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	insertVersionSQL = "INSERT INTO public.migration_version (id, name, applied_at) VALUES (?, ?, ?)"
)

// MigrationsManager records applied migrations in migration_version. Each
// migration runs in its own transaction together with its version row.
type MigrationsManager struct {
	db *gorm.DB
}

func NewMigrationsManager(db *gorm.DB) *MigrationsManager {
	return &MigrationsManager{db: db}
}

func (m *MigrationsManager) applied(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := m.db.WithContext(ctx).Raw("SELECT id FROM public.migration_version").Scan(&ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ApplyPending runs every registered migration not yet recorded and returns
// the IDs it applied.
func (m *MigrationsManager) ApplyPending(ctx context.Context) ([]string, error) {
	if err := m.db.WithContext(ctx).Exec(createVersionTableSQL).Error; err != nil {
		return nil, fmt.Errorf("ensure migrations table: %w", err)
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	var appliedNow []string
	for _, mig := range migrations.sorted() {
		if _, ok := done[mig.ID]; ok {
			continue
		}
		if mig.Up == nil {
			return appliedNow, fmt.Errorf("migration %s has no Up function", mig.ID)
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return fmt.Errorf("apply migration %s (%s): %w", mig.ID, mig.Name, err)
			}
			return tx.Exec(insertVersionSQL, mig.ID, mig.Name, time.Now()).Error
		})
		if err != nil {
			return appliedNow, err
		}
		appliedNow = append(appliedNow, mig.ID)
	}
	return appliedNow, nil
}
