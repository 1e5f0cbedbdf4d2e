package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DumpToFile exports every collection in the database to a single file under
// dir, one extended-JSON document per line prefixed with its collection name.
// It returns the path of the written file.
func (m *MongoDB) DumpToFile(ctx context.Context, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_dump_%s.jsonl",
		m.Database.Name(), time.Now().UTC().Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dump file: %w", err)
	}

	if err := m.dump(ctx, file); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close dump file: %w", err)
	}

	slog.Info("Database dump written", "path", path)
	return path, nil
}

func (m *MongoDB) dump(ctx context.Context, file *os.File) error {
	names, err := m.Database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range names {
		if err := m.dumpCollection(ctx, file, name); err != nil {
			return err
		}
	}

	return nil
}

func (m *MongoDB) dumpCollection(ctx context.Context, file *os.File, name string) error {
	cursor, err := m.GetCollection(name).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		line, err := bson.MarshalExtJSON(cursor.Current, false, false)
		if err != nil {
			return fmt.Errorf("failed to encode document from %s: %w", name, err)
		}
		if _, err := fmt.Fprintf(file, "%s\t%s\n", name, line); err != nil {
			return fmt.Errorf("failed to write dump file: %w", err)
		}
		count++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate collection %s: %w", name, err)
	}

	slog.Info("Dumped collection", "collection", name, "documents", count)
	return nil
}
