package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepairOutcome describes one run of the startup key repair.
type RepairOutcome struct {
	Scanned    int
	Reassigned int
	// Touched lists every key whose product changed: the duplicated keys
	// and the newly assigned ones.
	Touched []int64
	Err     error
}

// PlanKeyRepair computes the key assignments that make every product key
// present and unique. Records without a key get the next key above the
// running maximum; then, scanning in the given order, every repeat of an
// already-seen key does too. The first occurrence of a key keeps it.
func PlanKeyRepair(records []KeyRecord) []KeyAssignment {
	var maxKey int64
	for _, r := range records {
		if r.Key > maxKey {
			maxKey = r.Key
		}
	}
	var plan []KeyAssignment
	for _, r := range records {
		if r.Key <= 0 {
			maxKey++
			plan = append(plan, KeyAssignment{ObjectID: r.ObjectID, Key: maxKey})
		}
	}
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if r.Key <= 0 {
			continue
		}
		if _, dup := seen[r.Key]; dup {
			maxKey++
			plan = append(plan, KeyAssignment{ObjectID: r.ObjectID, Key: maxKey})
			continue
		}
		seen[r.Key] = struct{}{}
	}
	return plan
}

// RepairKeys scans every product and rewrites missing or duplicate keys in
// one batch. It never fails; problems are reported in the outcome.
func RepairKeys(ctx context.Context, st Store) RepairOutcome {
	records, err := st.ProductKeys(ctx)
	if err != nil {
		return RepairOutcome{Err: fmt.Errorf("scan product keys: %w", err)}
	}
	out := RepairOutcome{Scanned: len(records)}
	plan := PlanKeyRepair(records)
	if len(plan) == 0 {
		return out
	}
	if err := st.ReassignKeys(ctx, plan); err != nil {
		out.Err = fmt.Errorf("reassign %d product keys: %w", len(plan), err)
		return out
	}
	out.Reassigned = len(plan)
	old := make(map[primitive.ObjectID]int64, len(records))
	for _, r := range records {
		old[r.ObjectID] = r.Key
	}
	for _, a := range plan {
		if k := old[a.ObjectID]; k > 0 {
			out.Touched = append(out.Touched, k)
		}
		out.Touched = append(out.Touched, a.Key)
	}
	return out
}
