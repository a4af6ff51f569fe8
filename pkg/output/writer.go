// Package output manages the per-category CSV output files: the resume
// scan of already-fetched identifiers and the append-only incremental
// writer.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"steamfetch/pkg/errors"
	"steamfetch/pkg/steam"
)

// Header is the fixed 11-column output header. Column order is part of
// the output contract and must not change between runs.
var Header = []string{
	"app_id", "名称", "价格", "原价", "好评率", "总评价数",
	"发布日期", "开发商", "类型", "推荐配置", "Steam链接",
}

// utf8BOM makes the UTF-8 output open correctly in Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sanitize strips characters that are illegal in filesystem names from a
// category name.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
		case strings.ContainsRune(`/\:*?"<>|`, r):
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		out = "unnamed"
	}
	return out
}

// Filename computes the output file name for a category on a given date:
// {sanitized_name}_{YYYY-MM-DD}.csv
func Filename(category string, date time.Time) string {
	return fmt.Sprintf("%s_%s.csv", Sanitize(category), date.Format("2006-01-02"))
}

// FetchedIDs reads the app_id column of an existing output file into a
// set. A missing file means nothing has been fetched yet.
func FetchedIDs(path string) (map[int64]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]bool{}, nil
		}
		return nil, errors.NewFilesystemError("cannot open output file %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	fetched := make(map[int64]bool)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("corrupt output file %s: %v", path, err)
		}
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimPrefix(row[0], string(utf8BOM))
		id, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			// Header row or garbage; either way not a fetched ID.
			continue
		}
		fetched[id] = true
	}
	return fetched, nil
}

// Writer appends records to one category output file. Every appended row
// is flushed immediately, so a crash after row N leaves rows 1..N
// durable and the next run resumable.
type Writer struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// NewWriter opens (or creates) the output file for a category. A new
// file gets the BOM and the fixed header; an existing file is opened in
// append mode untouched.
func NewWriter(dir, category string, date time.Time) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewFilesystemError("cannot create output directory %s: %v", dir, err)
	}

	path := filepath.Join(dir, Filename(category, date))
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.NewFilesystemError("cannot open output file %s: %v", path, err)
	}

	w := &Writer{
		path: path,
		file: file,
		csv:  csv.NewWriter(file),
	}

	if isNew {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, errors.NewFilesystemError("cannot write BOM to %s: %v", path, err)
		}
		if err := w.writeRow(Header); err != nil {
			file.Close()
			return nil, err
		}
	}

	return w, nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one record as a new row and flushes it to disk. Rows are
// never rewritten or deleted.
func (w *Writer) Append(rec *steam.Record) error {
	return w.writeRow([]string{
		strconv.FormatInt(rec.AppID, 10),
		rec.Name,
		rec.Price,
		strconv.FormatFloat(rec.OriginalPrice, 'f', 2, 64),
		rec.ReviewRating,
		strconv.Itoa(rec.ReviewCount),
		rec.ReleaseDate,
		rec.Developer,
		rec.Genre,
		rec.RecommendedRequirements,
		rec.StoreURL,
	})
}

func (w *Writer) writeRow(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return errors.NewFilesystemError("cannot write row to %s: %v", w.path, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return errors.NewFilesystemError("cannot flush row to %s: %v", w.path, err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return errors.NewFilesystemError("cannot flush %s: %v", w.path, err)
	}
	return w.file.Close()
}
