package postgres

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"telegram-loyalty-bot/internal/domain/ports/repository"
)

var _ repository.MaintenanceRepository = (*PostgresMaintenanceRepo)(nil)

// PostgresMaintenanceRepo snapshots the database with pg_dump and rotates
// old snapshot files in the backup directory.
type PostgresMaintenanceRepo struct {
	databaseURL string
	dir         string
}

func NewPostgresMaintenanceRepo(databaseURL, dir string) *PostgresMaintenanceRepo {
	return &PostgresMaintenanceRepo{databaseURL: databaseURL, dir: dir}
}

const snapshotPrefix = "coffee_bot_"

func (r *PostgresMaintenanceRepo) Snapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := snapshotPrefix + time.Now().Format("2006-01-02_15-04") + ".sql"
	path := filepath.Join(r.dir, name)

	cmd := exec.CommandContext(ctx, "pg_dump", "--no-owner", "--file", path, r.databaseURL)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return path, nil
}

func (r *PostgresMaintenanceRepo) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		keep = 7
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), snapshotPrefix) {
			names = append(names, e.Name())
		}
	}
	// Timestamped names sort chronologically.
	sort.Strings(names)
	if len(names) <= keep {
		return 0, nil
	}

	removed := 0
	for _, n := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(r.dir, n)); err == nil {
			removed++
		}
	}
	return removed, nil
}
