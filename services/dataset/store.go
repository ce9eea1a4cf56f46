package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Load reads the whole dataset file. A missing file is an empty
// dataset, not an error, so a first run needs no setup step.
func Load(path string) ([]MovieRow, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if !slices.Equal(lines[0], header) {
		return nil, fmt.Errorf("dataset header mismatch, file written by an incompatible version")
	}

	var rows []MovieRow
	for i, line := range lines[1:] {
		row, err := decodeRow(line)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save rewrites the whole dataset. The write goes to a temporary file
// in the same directory first so an interrupted run never leaves a
// half-written table behind.
func Save(path string, rows []MovieRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp dataset: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing dataset header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(encodeRow(row)); err != nil {
			tmp.Close()
			return fmt.Errorf("writing dataset row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp dataset: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}
	return nil
}
