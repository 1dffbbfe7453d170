package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// writeBatchAtomic writes rows into outDir/tmp and then moves the file into
// outDir. It returns the final path.
func writeBatchAtomic[T any](outDir, schema string, rows []T) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// WriteEpisodes writes one episodes batch under root.
func WriteEpisodes(root string, rows []EpisodeRow) (string, error) {
	return writeBatchAtomic(filepath.Join(root, EpisodesTable), episodeSchema, rows)
}

// WriteDecisions writes one decisions batch under root.
func WriteDecisions(root string, rows []DecisionRow) (string, error) {
	return writeBatchAtomic(filepath.Join(root, DecisionsTable), decisionSchema, rows)
}

// ReadEpisodes loads every episode row stored under root.
func ReadEpisodes(root string) ([]EpisodeRow, error) {
	return readTable[EpisodeRow](root, EpisodesTable)
}

// ReadDecisions loads every decision row stored under root.
func ReadDecisions(root string) ([]DecisionRow, error) {
	return readTable[DecisionRow](root, DecisionsTable)
}

// BatchFiles lists the finished batch files of table under root, oldest first.
func BatchFiles(root, table string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(root, table, "batch_*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", table, err)
	}
	sort.Strings(files)
	return files, nil
}

func readTable[T any](root, table string) ([]T, error) {
	files, err := BatchFiles(root, table)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, f := range files {
		rows, err := parquet.ReadFile[T](f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
