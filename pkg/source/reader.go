// Package source reads game identifier lists from JSON collection files
// and CSV files, producing the per-category work queues for the fetch
// pipeline.
package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"steamfetch/pkg/errors"
	"steamfetch/pkg/logger"
)

// Category is a named, ordered group of game identifiers driving one
// output file.
type Category struct {
	Name   string
	AppIDs []int64
}

// collectionsFile mirrors the JSON config layout:
// {"collections":[{"name":"Indie","added":[10,20,30]}]}
type collectionsFile struct {
	Collections []collection `json:"collections"`
}

type collection struct {
	Name  string  `json:"name"`
	Added []int64 `json:"added"`
}

// ReadJSON parses a JSON collections file into categories.
func ReadJSON(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewParseError("cannot read JSON file %s: %v", path, err)
	}

	var file collectionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.NewParseError("malformed JSON in %s: %v", path, err)
	}
	if len(file.Collections) == 0 {
		return nil, errors.NewParseError("no collections found in %s", path)
	}

	categories := make([]Category, 0, len(file.Collections))
	for _, col := range file.Collections {
		if col.Name == "" {
			return nil, errors.NewParseError("collection without a name in %s", path)
		}
		categories = append(categories, Category{
			Name:   col.Name,
			AppIDs: dedup(col.Added),
		})
	}
	return categories, nil
}

// ReadCSV parses a CSV file of identifiers into a single category named
// after the file. The identifier column is selected by name priority:
// app_id, then id, then the first column. A file without a header row is
// read through the first-column fallback.
func ReadCSV(path string) (Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return Category{}, errors.NewParseError("cannot read CSV file %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return Category{}, errors.NewParseError("malformed CSV in %s: %v", path, err)
	}
	if len(rows) == 0 {
		return Category{}, errors.NewParseError("empty CSV file %s", path)
	}

	col, skipHeader := identifierColumn(rows[0])

	var ids []int64
	for i, row := range rows {
		if i == 0 && skipHeader {
			continue
		}
		if col >= len(row) {
			continue
		}
		id, err := parseAppID(row[col])
		if err != nil {
			// Non-numeric cells are skipped, not fatal.
			continue
		}
		ids = append(ids, id)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Category{Name: name, AppIDs: dedup(ids)}, nil
}

// identifierColumn picks the identifier column from a header row and
// reports whether the row is a header to be skipped.
func identifierColumn(header []string) (int, bool) {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), "app_id") {
			return i, true
		}
	}
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), "id") {
			return i, true
		}
	}
	// First-column fallback. If the first cell already parses as an
	// identifier there is no header row.
	if len(header) > 0 {
		if _, err := parseAppID(header[0]); err == nil {
			return 0, false
		}
	}
	return 0, true
}

func parseAppID(cell string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("identifier must be positive, got %d", id)
	}
	return id, nil
}

// dedup removes duplicate identifiers preserving first-seen order.
func dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Load reads all configured JSON and CSV sources. Per-file parse errors
// are logged and the remaining files continue; an error is returned only
// when no source yielded any category.
func Load(jsonPaths, csvPaths []string, log logger.Logger) ([]Category, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var categories []Category

	for _, path := range jsonPaths {
		cats, err := ReadJSON(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping JSON source")
			continue
		}
		log.InfoWithFields("loaded JSON source", map[string]interface{}{
			"file":       path,
			"categories": len(cats),
		})
		categories = append(categories, cats...)
	}

	for _, path := range csvPaths {
		cat, err := ReadCSV(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping CSV source")
			continue
		}
		log.InfoWithFields("loaded CSV source", map[string]interface{}{
			"file": path,
			"ids":  len(cat.AppIDs),
		})
		categories = append(categories, cat)
	}

	if len(categories) == 0 {
		return nil, errors.NewParseError("no readable identifier sources")
	}
	return categories, nil
}
