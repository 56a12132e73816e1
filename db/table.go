package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joonhk/community-server/cmd/utils"
	"github.com/sirupsen/logrus"
)

// Record is implemented by every entity a Table persists.
type Record interface {
	GetID() int
	SetID(id int)
}

// Table stores one entity type as a JSON array in a single file. There
// is no index and no partial write: every lookup scans the whole table
// and every mutation rewrites the whole file. A per-table mutex
// serializes read-modify-write cycles within this process; nothing
// coordinates across tables or processes.
type Table[T Record] struct {
	path string
	mu   sync.Mutex
	log  *logrus.Entry
}

func NewTable[T Record](path string, log *logrus.Entry) *Table[T] {
	return &Table[T]{path: path, log: log}
}

// ReadAll loads the entire table. A missing file is an empty table.
func (t *Table[T]) ReadAll() ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readAll()
}

// WriteAll replaces the entire table.
func (t *Table[T]) WriteAll(records []T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeAll(records)
}

func (t *Table[T]) readAll() ([]T, error) {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		t.log.WithError(err).Error("table read failed")
		return nil, utils.Storage(fmt.Sprintf("failed to read %s", filepath.Base(t.path)), err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		t.log.WithError(err).Error("table contains malformed JSON")
		return nil, utils.Storage(fmt.Sprintf("failed to decode %s", filepath.Base(t.path)), err)
	}
	return records, nil
}

func (t *Table[T]) writeAll(records []T) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return utils.Storage("failed to create data directory", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return utils.Storage(fmt.Sprintf("failed to encode %s", filepath.Base(t.path)), err)
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		t.log.WithError(err).Error("table write failed")
		return utils.Storage(fmt.Sprintf("failed to write %s", filepath.Base(t.path)), err)
	}
	return nil
}

// NextID scans the table and returns max(id)+1, or 1 when empty. Ids
// are not a high-water mark: deleting the highest record frees its id.
func (t *Table[T]) NextID() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return 0, err
	}
	return nextID(records), nil
}

func nextID[T Record](records []T) int {
	max := 0
	for _, r := range records {
		if r.GetID() > max {
			max = r.GetID()
		}
	}
	return max + 1
}

// FindByID returns the record with the given id, if present.
func (t *Table[T]) FindByID(id int) (T, bool, error) {
	return t.Find(func(r T) bool { return r.GetID() == id })
}

// Find returns the first record matching the predicate.
func (t *Table[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if pred(r) {
			return r, true, nil
		}
	}
	return zero, false, nil
}

// Filter returns every record matching the predicate, in table order.
func (t *Table[T]) Filter(pred func(T) bool) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return nil, err
	}
	matched := []T{}
	for _, r := range records {
		if pred(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Count returns the number of records matching the predicate.
func (t *Table[T]) Count(pred func(T) bool) (int, error) {
	matched, err := t.Filter(pred)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Create assigns the next id to record, appends it and rewrites the
// table. The stored record is returned with its id set.
func (t *Table[T]) Create(record T) (T, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return zero, err
	}
	record.SetID(nextID(records))
	records = append(records, record)
	if err := t.writeAll(records); err != nil {
		return zero, err
	}
	return record, nil
}

// Update locates the record by id, applies the mutation to it in place
// and rewrites the table. Fields the mutation does not touch keep their
// stored values. Returns false when the id is not present.
func (t *Table[T]) Update(id int, apply func(T)) (T, bool, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if r.GetID() == id {
			apply(r)
			if err := t.writeAll(records); err != nil {
				return zero, false, err
			}
			return r, true, nil
		}
	}
	return zero, false, nil
}

// Delete removes the record with the given id. The table is only
// rewritten when something was actually removed.
func (t *Table[T]) Delete(id int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	records, err := t.readAll()
	if err != nil {
		return false, err
	}
	kept := records[:0:0]
	for _, r := range records {
		if r.GetID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := t.writeAll(kept); err != nil {
		return false, err
	}
	return true, nil
}
