// Package keynote reads and writes a small local key-value note.
// The note is a flat YAML map, used to hold credentials such as the GitHub
// API token outside the main config file.
package keynote

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultFileMode = 0600
	defaultDirMode  = 0700
)

// Note is a key-value note backed by a YAML file. A missing file reads as an
// empty note.
type Note struct {
	mu   sync.Mutex
	path string
}

// Open returns a note at path. The file is not read until Lookup.
func Open(path string) (*Note, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("keynote: path is empty")
	}
	return &Note{path: path}, nil
}

// Path returns the backing file path.
func (n *Note) Path() string {
	return n.path
}

// Get returns the value stored under key. ok is false when the key or the
// file does not exist.
func (n *Note) Get(key string) (value string, ok bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	entries, err := n.read()
	if err != nil {
		return "", false, err
	}
	value, ok = entries[key]
	return value, ok, nil
}

// Lookup returns a function reading key on every call, so edits to the note
// are picked up without restarting.
func (n *Note) Lookup(key string) func() (string, error) {
	return func() (string, error) {
		v, _, err := n.Get(key)
		return strings.TrimSpace(v), err
	}
}

// Set stores value under key and rewrites the file.
func (n *Note) Set(key, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	entries, err := n.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return n.write(entries)
}

// Delete removes key. Deleting a missing key is not an error.
func (n *Note) Delete(key string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	entries, err := n.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return n.write(entries)
}

func (n *Note) read() (map[string]string, error) {
	data, err := os.ReadFile(n.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keynote: read: %w", err)
	}

	entries := map[string]string{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("keynote: parse %s: %w", n.path, err)
	}
	return entries, nil
}

// write replaces the file through a temp file and rename.
func (n *Note) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(n.path), defaultDirMode); err != nil {
		return fmt.Errorf("keynote: mkdir: %w", err)
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("keynote: marshal: %w", err)
	}

	tmp := n.path + ".tmp"
	if err := os.WriteFile(tmp, data, defaultFileMode); err != nil {
		return fmt.Errorf("keynote: write: %w", err)
	}
	if err := os.Rename(tmp, n.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("keynote: rename: %w", err)
	}
	return nil
}
