package core

import (
	"errors"
	"sync"
)

// fakeMeta stands in for the exiftool adapter. It stores tags by bare name,
// which is how the real tool reports them, and records every accepted write
// (rejected ones are not recorded) so tests
// can assert the dry-run gate holds.
type fakeMeta struct {
	mu        sync.Mutex
	tags      map[string]map[string]string
	writes    []fakeWrite
	failWrite func(path string, tags map[string]string) bool
}

type fakeWrite struct {
	path string
	tags map[string]string
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{tags: make(map[string]map[string]string)}
}

func (f *fakeMeta) factory() MetadataFactory {
	return func() (Metadata, error) { return f, nil }
}

func (f *fakeMeta) setTag(path, tag, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tags[path] == nil {
		f.tags[path] = make(map[string]string)
	}
	f.tags[path][bareTag(tag)] = value
}

func (f *fakeMeta) ReadTag(path, tag string) string {
	return f.ReadTags(path, []string{tag})[tag]
}

func (f *fakeMeta) ReadTags(path string, tags []string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[tag] = f.tags[path][bareTag(tag)]
	}
	return out
}

func (f *fakeMeta) WriteTags(path string, tags map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil && f.failWrite(path, tags) {
		return errors.New("write rejected")
	}
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	f.writes = append(f.writes, fakeWrite{path: path, tags: copied})
	if f.tags[path] == nil {
		f.tags[path] = make(map[string]string)
	}
	for k, v := range tags {
		f.tags[path][bareTag(k)] = v
	}
	return nil
}

func (f *fakeMeta) Close() error { return nil }

func (f *fakeMeta) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}
