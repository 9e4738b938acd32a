// Package registry implements the string-keyed parameter store shared by
// scenario files, population files, and controller configuration.
//
// The on-disk format is one "key = value" pair per line; blank lines and
// lines starting with '#' are ignored. Keys keep insertion order, so a
// load/save round trip is byte-stable.
package registry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Registry is an ordered string-to-string map with typed accessors.
// Missing keys read as zero values; configuration paths that cannot
// tolerate that use MustGet.
type Registry struct {
	keys   []string
	values map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{values: make(map[string]string)}
}

// Copy returns a deep copy of r.
func (r *Registry) Copy() *Registry {
	c := New()
	for _, k := range r.keys {
		c.Put(k, r.values[k])
	}
	return c
}

// Len returns the number of keys.
func (r *Registry) Len() int {
	return len(r.keys)
}

// Keys returns the keys in insertion order. The caller must not mutate
// the returned slice.
func (r *Registry) Keys() []string {
	return r.keys
}

// Contains reports whether key is present.
func (r *Registry) Contains(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Put sets key to value, preserving the key's original position when it
// already exists.
func (r *Registry) Put(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// PutInt formats and stores an integer value.
func (r *Registry) PutInt(key string, v int) {
	r.Put(key, strconv.Itoa(v))
}

// PutFloat formats and stores a float value.
func (r *Registry) PutFloat(key string, v float32) {
	r.Put(key, strconv.FormatFloat(float64(v), 'f', -1, 32))
}

// PutBool stores a boolean as TRUE/FALSE.
func (r *Registry) PutBool(key string, v bool) {
	if v {
		r.Put(key, "TRUE")
	} else {
		r.Put(key, "FALSE")
	}
}

// Remove deletes key if present.
func (r *Registry) Remove(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Get returns the raw string for key, or "" when missing.
func (r *Registry) Get(key string) string {
	return r.values[key]
}

// MustGet returns the raw string for key and panics when missing; used
// only on configuration paths before any battle starts.
func (r *Registry) MustGet(key string) string {
	v, ok := r.values[key]
	if !ok {
		panic(fmt.Sprintf("registry: missing key: %s", key))
	}
	return v
}

// GetInt parses key as an integer; missing or unparseable reads as 0.
func (r *Registry) GetInt(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.values[key]))
	if err != nil {
		return 0
	}
	return v
}

// GetUint parses key as a non-negative integer; negative, missing or
// unparseable reads as 0.
func (r *Registry) GetUint(key string) uint {
	v := r.GetInt(key)
	if v < 0 {
		return 0
	}
	return uint(v)
}

// GetUint64 parses key as a uint64, accepting 0x-prefixed hex; missing
// or unparseable reads as 0.
func (r *Registry) GetUint64(key string) uint64 {
	s := strings.TrimSpace(r.values[key])
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0
	}
	return v
}

// GetFloat parses key as a float32; missing or unparseable reads as 0.
func (r *Registry) GetFloat(key string) float32 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.values[key]), 32)
	if err != nil {
		return 0
	}
	return float32(v)
}

// GetBool parses key as a boolean. TRUE/true/True/1 are true; everything
// else, including a missing key, is false.
func (r *Registry) GetBool(key string) bool {
	switch strings.TrimSpace(r.values[key]) {
	case "TRUE", "true", "True", "1":
		return true
	default:
		return false
	}
}

// GetFloatDefault returns def when key is absent.
func (r *Registry) GetFloatDefault(key string, def float32) float32 {
	if !r.Contains(key) {
		return def
	}
	return r.GetFloat(key)
}

// GetIntDefault returns def when key is absent.
func (r *Registry) GetIntDefault(key string, def int) int {
	if !r.Contains(key) {
		return def
	}
	return r.GetInt(key)
}

// PutAllWithPrefix copies every entry of src into r with prefix
// prepended to each key.
func (r *Registry) PutAllWithPrefix(src *Registry, prefix string) {
	for _, k := range src.keys {
		r.Put(prefix+k, src.values[k])
	}
}

// SplitOnPrefix returns a new registry holding every entry of r whose
// key starts with prefix, with the prefix stripped.
func (r *Registry) SplitOnPrefix(prefix string) *Registry {
	out := New()
	for _, k := range r.keys {
		if strings.HasPrefix(k, prefix) {
			out.Put(strings.TrimPrefix(k, prefix), r.values[k])
		}
	}
	return out
}

// LoadFile merges the key/value file at path into r, later keys
// overriding earlier ones.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "registry: open %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return errors.Errorf("registry: %s:%d: malformed line %q", path, lineNo, line)
		}
		r.Put(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "registry: read %s", path)
	}
	return nil
}

// SaveFile writes r to path in load order, one "key = value" per line.
func (r *Registry) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "registry: create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, k := range r.keys {
		if _, err := fmt.Fprintf(w, "%s = %s\n", k, r.values[k]); err != nil {
			return errors.Wrapf(err, "registry: write %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "registry: flush %s", path)
	}
	return nil
}
