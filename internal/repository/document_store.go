package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/noah-isme/evaluation-system/pkg/storage"
)

// Collection file names and their top-level keys.
const (
	usersDocument       = "users.json"
	studentsDocument    = "students.json"
	teachersDocument    = "teachers.json"
	subjectsDocument    = "subjects.json"
	enrollmentsDocument = "enrollments.json"
)

// documentCollection stores one entity collection as a single JSON document of the
// form {"<key>": [...]}. Every write replaces the whole file. The mutex serialises
// read-modify-write cycles on the collection.
type documentCollection[T any] struct {
	mu      sync.Mutex
	storage *storage.LocalStorage
	file    string
	key     string
}

func newDocumentCollection[T any](store *storage.LocalStorage, file, key string) *documentCollection[T] {
	return &documentCollection[T]{storage: store, file: file, key: key}
}

// view loads the collection under the lock.
func (c *documentCollection[T]) view(fn func(items []T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return err
	}
	return fn(items)
}

// update loads the collection, applies fn and persists the result. Nothing is written
// when fn fails.
func (c *documentCollection[T]) update(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.persist(next)
}

func (c *documentCollection[T]) load() ([]T, error) {
	raw, err := c.storage.ReadFile(c.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.file, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.file, err)
	}
	items := []T{}
	body, ok := document[c.key]
	if !ok || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return items, nil
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", c.file, c.key, err)
	}
	return items, nil
}

func (c *documentCollection[T]) persist(items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.MarshalIndent(map[string][]T{c.key: items}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.file, err)
	}
	if _, err := c.storage.Save(c.file, payload); err != nil {
		return fmt.Errorf("write %s: %w", c.file, err)
	}
	return nil
}
