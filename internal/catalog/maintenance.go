package catalog

import (
	"context"
	"log/slog"
)

// MaintenanceReport collects the outcome of each startup maintenance step.
type MaintenanceReport struct {
	Detached bool
	Repair   RepairOutcome
	IndexErr error
	Seed     SeedOutcome
	Seeded   bool
}

// RunStartupMaintenance repairs product keys, ensures indexes and, when
// seed is set, seeds sample data, in that order. None of the steps abort
// the others; the report says what happened. Cached entries for any
// product the steps changed are dropped afterwards.
func (s *Service) RunStartupMaintenance(ctx context.Context, seed bool) MaintenanceReport {
	if s.store == nil {
		return MaintenanceReport{Detached: true}
	}
	var r MaintenanceReport
	r.Repair = RepairKeys(ctx, s.store)
	r.IndexErr = s.store.EnsureIndexes(ctx)
	if seed {
		r.Seeded = true
		r.Seed = SeedSampleProducts(ctx, s.store, s.now())
	}
	if touched := append(r.Repair.Touched, r.Seed.Keys...); len(touched) > 0 {
		s.invalidate(ctx, touched...)
	}
	return r
}

// Log writes the report to l.
func (r MaintenanceReport) Log(l *slog.Logger) {
	if r.Detached {
		l.Warn("startup_maintenance_skipped", "reason", "database not connected")
		return
	}
	if r.Repair.Err != nil {
		l.Error("key_repair_failed", "error", r.Repair.Err, "scanned", r.Repair.Scanned)
	} else if r.Repair.Reassigned > 0 {
		l.Info("key_repair_applied", "scanned", r.Repair.Scanned, "reassigned", r.Repair.Reassigned)
	} else {
		l.Info("key_repair_clean", "scanned", r.Repair.Scanned)
	}
	if r.IndexErr != nil {
		l.Warn("index_creation_failed", "error", r.IndexErr)
	} else {
		l.Info("indexes_ready")
	}
	if !r.Seeded {
		return
	}
	switch {
	case r.Seed.Err != nil:
		l.Error("sample_seed_failed", "error", r.Seed.Err)
	case r.Seed.Inserted > 0:
		l.Info("sample_products_seeded", "inserted", r.Seed.Inserted)
	default:
		l.Info("sample_seed_skipped", "existing_products", r.Seed.Existing)
	}
}
