// Package ledger records which generated fragments have been inserted
// into which files, so repeated generator runs stay idempotent.
//
// The record lives at .plume/generation-record.yml in the project
// root, keyed by target path with a list of fragment hashes. It only
// grows. Deleting it is safe: the append-to-list strategy re-detects
// its own fragments, and the other strategies simply re-apply.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/plume/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the project-relative directory holding generation state.
	Dir = ".plume"

	// FileName is the record file inside Dir.
	FileName = "generation-record.yml"
)

// Record tracks applied fragment hashes per target file.
type Record struct {
	root  string
	files map[string][]string
}

type recordFile struct {
	Files map[string][]string `yaml:"files"`
}

// Load reads the record under root. A missing file yields an empty
// record; an unreadable or unparsable one is an error, and deleting
// the file is the documented remedy.
func Load(root string) (*Record, error) {
	r := &Record{root: root, files: make(map[string][]string)}

	path := filepath.Join(root, Dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file recordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s (delete it to reset): %w", path, err)
	}
	if file.Files != nil {
		r.files = file.Files
	}
	return r, nil
}

// Contains reports whether hash was already applied to target.
func (r *Record) Contains(target, hash string) bool {
	for _, h := range r.files[target] {
		if h == hash {
			return true
		}
	}
	return false
}

// Add records hash against target. Adding an existing hash is a no-op.
func (r *Record) Add(target, hash string) {
	if r.Contains(target, hash) {
		return
	}
	r.files[target] = append(r.files[target], hash)
}

// Save rewrites the record file atomically. Targets serialize in
// sorted order, so saves are deterministic.
func (r *Record) Save() error {
	data, err := yaml.Marshal(recordFile{Files: r.files})
	if err != nil {
		return fmt.Errorf("encoding generation record: %w", err)
	}
	path := filepath.Join(r.root, Dir, FileName)
	if err := fsutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Hash returns the hex sha256 of a substituted fragment.
func Hash(fragment string) string {
	sum := sha256.Sum256([]byte(fragment))
	return hex.EncodeToString(sum[:])
}
