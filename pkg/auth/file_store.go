package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// FileStore reads and writes the plain-text cookies.txt format:
// one key=value pair per line, lines starting with # are comments.
type FileStore struct {
	path string
}

// NewFileStore creates a store over a cookies.txt path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name identifies the store
func (f *FileStore) Name() string { return "file:" + f.path }

// Load parses the cookie file
func (f *FileStore) Load() (map[string]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer file.Close()
	return ParseCookies(file)
}

// Save writes the cookie set back in the same line format
func (f *FileStore) Save(cookies map[string]string) error {
	var b strings.Builder
	b.WriteString("# steamdb.info session cookies\n")

	keys := make([]string, 0, len(cookies))
	for k := range cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, cookies[k])
	}

	return os.WriteFile(f.path, []byte(b.String()), 0600)
}

// Exists checks for the cookie file
func (f *FileStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Delete removes the cookie file
func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ParseCookies reads line-oriented key=value pairs, ignoring blank lines
// and # comments. Values may contain '=' characters; only the first one
// splits.
func ParseCookies(r io.Reader) (map[string]string, error) {
	cookies := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		cookies[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return cookies, nil
}

// ParseCookieHeader splits a "k=v; k2=v2" browser header string into a
// cookie map.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || key == "" {
			continue
		}
		cookies[key] = value
	}
	return cookies
}
