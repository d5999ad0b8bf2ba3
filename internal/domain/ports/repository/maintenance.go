package repository

import "context"

// MaintenanceRepository produces and rotates storage snapshots.
type MaintenanceRepository interface {
	// Snapshot dumps the database to a timestamped file and returns its path.
	Snapshot(ctx context.Context) (string, error)
	// PruneSnapshots deletes all but the `keep` newest snapshot files and
	// returns how many were removed.
	PruneSnapshots(ctx context.Context, keep int) (int, error)
}
