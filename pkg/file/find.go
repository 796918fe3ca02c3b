package file

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindByStem returns regular files in dir whose base name is stem followed
// by an extension, e.g. "subtitle.en.vtt" for stem "subtitle". Results are
// sorted by name. A missing dir yields no matches and no error.
func FindByStem(dir, stem string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var found []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, stem+".") && len(name) > len(stem)+1 {
			found = append(found, filepath.Join(dir, name))
		}
	}
	sort.Strings(found)
	return found, nil
}

// Ext returns the lowercase extension of path without the leading dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
