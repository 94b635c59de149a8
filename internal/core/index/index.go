// Package index provides an insertion-ordered keyed collection with O(1)
// translation between a key and its row.
package index

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrDuplicateKey indicates an insert of a key that is already present.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrKeyNotFound indicates a lookup or removal of an absent key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrOutOfRange indicates a row outside [0, Len()).
	ErrOutOfRange = errors.New("row out of range")
)

// Index maps unique keys to values and keeps them in insertion order.
// Row numbers are contiguous from zero.
//
// The zero value is not usable; create one with New.
type Index[K comparable, V any] struct {
	keys   []K
	values map[K]V
	rows   map[K]int
}

// New returns an empty Index.
func New[K comparable, V any]() *Index[K, V] {
	return &Index[K, V]{
		values: make(map[K]V),
		rows:   make(map[K]int),
	}
}

// Insert appends key at the end and returns its row.
func (ix *Index[K, V]) Insert(key K, value V) (int, error) {
	if _, ok := ix.rows[key]; ok {
		return -1, fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}
	row := len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.values[key] = value
	ix.rows[key] = row
	return row, nil
}

// Remove deletes key and returns its value and the row it occupied.
//
// Every entry after the removed one moves up by one row, so Remove is O(n) in
// the number of following entries.
func (ix *Index[K, V]) Remove(key K) (V, int, error) {
	row, ok := ix.rows[key]
	if !ok {
		var zero V
		return zero, -1, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	value := ix.values[key]

	copy(ix.keys[row:], ix.keys[row+1:])
	var zeroKey K
	ix.keys[len(ix.keys)-1] = zeroKey
	ix.keys = ix.keys[:len(ix.keys)-1]
	for i := row; i < len(ix.keys); i++ {
		ix.rows[ix.keys[i]] = i
	}

	delete(ix.values, key)
	delete(ix.rows, key)
	return value, row, nil
}

// RowOf returns the current row of key.
func (ix *Index[K, V]) RowOf(key K) (int, error) {
	row, ok := ix.rows[key]
	if !ok {
		return -1, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return row, nil
}

// KeyAt returns the key stored at row.
func (ix *Index[K, V]) KeyAt(row int) (K, error) {
	if row < 0 || row >= len(ix.keys) {
		var zero K
		return zero, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, row, len(ix.keys))
	}
	return ix.keys[row], nil
}

// ValueAt returns the value stored at row.
func (ix *Index[K, V]) ValueAt(row int) (V, error) {
	key, err := ix.KeyAt(row)
	if err != nil {
		var zero V
		return zero, err
	}
	return ix.values[key], nil
}

// Get returns the value for key.
func (ix *Index[K, V]) Get(key K) (V, bool) {
	v, ok := ix.values[key]
	return v, ok
}

// Has reports whether key is present.
func (ix *Index[K, V]) Has(key K) bool {
	_, ok := ix.rows[key]
	return ok
}

// Len returns the number of entries.
func (ix *Index[K, V]) Len() int {
	return len(ix.keys)
}

// Keys returns a copy of the keys in row order.
func (ix *Index[K, V]) Keys() []K {
	out := make([]K, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// All iterates entries in row order. The index must not be mutated while
// iterating.
func (ix *Index[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range ix.keys {
			if !yield(k, ix.values[k]) {
				return
			}
		}
	}
}
