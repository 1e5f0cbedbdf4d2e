package scheduler

import (
	"context"
	"fmt"
	"os"
)

// Dumper exports the database to a file under dir and returns its path.
type Dumper interface {
	DumpToFile(ctx context.Context, dir string) (string, error)
}

// DumpNotifier ships a dump file to the dump chat.
type DumpNotifier interface {
	SendDBDump(path string) error
}

// DumpJob exports the database to a file and ships it through the bot.
type DumpJob struct {
	db       Dumper
	notifier DumpNotifier
	dir      string
}

// NewDumpJob creates the dump job writing temporary files under dir.
func NewDumpJob(db Dumper, notifier DumpNotifier, dir string) *DumpJob {
	if dir == "" {
		dir = os.TempDir()
	}
	return &DumpJob{
		db:       db,
		notifier: notifier,
		dir:      dir,
	}
}

// Run dumps the database and sends the file. The file is removed afterwards
// whether or not the send succeeded.
func (j *DumpJob) Run(ctx context.Context) error {
	path, err := j.db.DumpToFile(ctx, j.dir)
	if err != nil {
		return fmt.Errorf("failed to dump database: %w", err)
	}
	defer os.Remove(path)

	if err := j.notifier.SendDBDump(path); err != nil {
		return fmt.Errorf("failed to send database dump: %w", err)
	}

	return nil
}
