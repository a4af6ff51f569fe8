package source

import (
	"os"
	"path/filepath"
	"testing"

	"steamfetch/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestReadJSON(t *testing.T) {
	path := writeFile(t, "collections.json", `{
		"collections": [
			{"name": "Indie", "added": [10, 20, 30, 20]},
			{"name": "RPG", "added": [570]}
		]
	}`)

	categories, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}

	if categories[0].Name != "Indie" {
		t.Errorf("Expected first category Indie, got %s", categories[0].Name)
	}

	// Duplicates collapse, order preserved.
	want := []int64{10, 20, 30}
	if len(categories[0].AppIDs) != len(want) {
		t.Fatalf("Expected %d app IDs, got %v", len(want), categories[0].AppIDs)
	}
	for i, id := range want {
		if categories[0].AppIDs[i] != id {
			t.Errorf("Expected app ID %d at position %d, got %d", id, i, categories[0].AppIDs[i])
		}
	}

	if categories[1].Name != "RPG" || len(categories[1].AppIDs) != 1 {
		t.Errorf("Unexpected second category: %+v", categories[1])
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed JSON", `{"collections": [`},
		{"no collections", `{"collections": []}`},
		{"unnamed collection", `{"collections": [{"name": "", "added": [10]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tt.content)
			_, err := ReadJSON(path)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.IsParse(err) {
				t.Errorf("Expected a parse error, got %v", err)
			}
		})
	}

	if _, err := ReadJSON("/nonexistent/collections.json"); !errors.IsParse(err) {
		t.Errorf("Expected parse error for missing file, got %v", err)
	}
}

func TestReadCSVColumnPriority(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []int64
	}{
		{
			name:    "app_id column wins",
			content: "rank,app_id,id\n1,570,99\n2,730,88\n",
			want:    []int64{570, 730},
		},
		{
			name:    "id column fallback",
			content: "name,id\nDota,570\nCS,730\n",
			want:    []int64{570, 730},
		},
		{
			name:    "headerless first column",
			content: "570,Dota\n730,CS\n",
			want:    []int64{570, 730},
		},
		{
			name:    "unknown header skipped",
			content: "game,release\n570,2013\n",
			want:    []int64{570},
		},
		{
			name:    "non-numeric cells skipped",
			content: "app_id\n570\nabc\n-5\n730\n",
			want:    []int64{570, 730},
		},
		{
			name:    "duplicates removed",
			content: "app_id\n570\n570\n730\n",
			want:    []int64{570, 730},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "ids.csv", tt.content)
			cat, err := ReadCSV(path)
			if err != nil {
				t.Fatalf("Failed to read CSV: %v", err)
			}
			if len(cat.AppIDs) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, cat.AppIDs)
			}
			for i, id := range tt.want {
				if cat.AppIDs[i] != id {
					t.Errorf("Expected app ID %d at position %d, got %d", id, i, cat.AppIDs[i])
				}
			}
		})
	}
}

func TestReadCSVCategoryName(t *testing.T) {
	path := writeFile(t, "wishlist.csv", "app_id\n570\n")

	cat, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if cat.Name != "wishlist" {
		t.Errorf("Expected category named after the file, got %s", cat.Name)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	if _, err := ReadCSV(path); !errors.IsParse(err) {
		t.Errorf("Expected parse error for empty file, got %v", err)
	}
}

func TestLoadSkipsBadFiles(t *testing.T) {
	good := writeFile(t, "good.json", `{"collections": [{"name": "Indie", "added": [10]}]}`)
	bad := writeFile(t, "bad.json", `not json`)
	csvPath := writeFile(t, "extra.csv", "app_id\n20\n")

	categories, err := Load([]string{bad, good}, []string{csvPath}, nil)
	if err != nil {
		t.Fatalf("Expected load to survive a bad file, got %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}

	if categories[0].Name != "Indie" || categories[1].Name != "extra" {
		t.Errorf("Unexpected categories: %v, %v", categories[0].Name, categories[1].Name)
	}
}

func TestLoadAllBadFiles(t *testing.T) {
	bad := writeFile(t, "bad.json", `not json`)

	_, err := Load([]string{bad}, nil, nil)
	if err == nil {
		t.Fatal("Expected error when no source is readable")
	}
	if !errors.IsParse(err) {
		t.Errorf("Expected a parse error, got %v", err)
	}
}
