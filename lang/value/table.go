package value

import (
	"math"
	"reflect"
)

const tableMaxLoad = 0.75

type tableEntry struct {
	key   Value
	value Value
}

func isNilValue(v Value) bool {
	return v == nil || v.Kind() == KindNil
}

// emptyEntry reports whether e has never held a live key ({key: Nil, value:
// Nil}, spec.md §4.5).
func (e tableEntry) empty() bool { return isNilValue(e.key) && isNilValue(e.value) }

// tombstone reports whether e is a deleted slot ({key: Nil, value: True}).
func (e tableEntry) tombstone() bool {
	if !isNilValue(e.key) {
		return false
	}
	b, ok := e.value.(Bool)
	return ok && bool(b)
}

// Table is the open-addressed hash map keyed by Value that backs globals,
// Dict, the string-intern set, and enum value tables (spec.md §3, §4.5).
// Probing is linear; load factor is kept at or below 0.75 by doubling
// capacity (minimum 8) whenever it would be exceeded.
type Table struct {
	entries []tableEntry
	count   int // occupied slots: live entries plus tombstones left by Delete
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Count returns the number of occupied slots: the live key/value pairs plus
// any tombstones Delete has left since the table last grew (growing drops
// them). For a table that has never had a Delete, that is its live pairs.
func (t *Table) Count() int { return t.count }

// Capacity returns the current number of slots.
func (t *Table) Capacity() int { return len(t.entries) }

func hashValue(v Value) uint32 {
	switch v.Kind() {
	case KindNil:
		return 0
	case KindBool:
		if bool(v.(Bool)) {
			return 1
		}
		return 0
	case KindNumber:
		bits := math.Float64bits(float64(v.(Number)))
		return uint32(bits) ^ uint32(bits>>32)
	case KindError:
		return HashString(string(v.(Error)))
	case KindObj:
		o := v.(Obj)
		if s, ok := o.(*String); ok {
			return s.Hash
		}
		return identityHash(o)
	default:
		return 0
	}
}

func identityHash(o Obj) uint32 {
	p := reflect.ValueOf(o).Pointer()
	return uint32(p) ^ uint32(p>>32)
}

// findEntry runs the linear-probing search for key over entries (capacity
// must be a power of two, or at least non-zero). It returns the slot where
// key either lives or should be inserted: the first tombstone encountered is
// preferred over an empty slot past it (spec.md §4.5).
func findEntry(entries []tableEntry, key Value) int {
	capacity := len(entries)
	idx := int(hashValue(key)) % capacity
	var tombstoneIdx = -1
	for {
		e := &entries[idx]
		switch {
		case e.empty():
			if tombstoneIdx != -1 {
				return tombstoneIdx
			}
			return idx
		case e.tombstone():
			if tombstoneIdx == -1 {
				tombstoneIdx = idx
			}
		case Equal(e.key, key):
			return idx
		}
		idx = (idx + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]tableEntry, capacity)
	for i := range entries {
		entries[i] = tableEntry{key: Nil, value: Nil}
	}

	t.count = 0
	for _, e := range t.entries {
		if e.empty() || e.tombstone() {
			continue
		}
		idx := findEntry(entries, e.key)
		entries[idx] = e
		t.count++
	}
	t.entries = entries
}

// Get returns the value stored for key and whether key was present.
func (t *Table) Get(key Value) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	idx := findEntry(t.entries, key)
	e := t.entries[idx]
	if e.empty() || e.tombstone() {
		return Nil, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if that would push
// the load factor above 0.75. It returns true if key was not already
// present.
func (t *Table) Set(key, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		capacity := len(t.entries) * 2
		if capacity < 8 {
			capacity = 8
		}
		t.adjustCapacity(capacity)
	}

	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	isNew := e.empty() || e.tombstone()
	if e.empty() {
		t.count++ // a reused tombstone is already counted
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone behind to preserve probe chains
// for keys that were inserted after a collision with it.
func (t *Table) Delete(key Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.empty() || e.tombstone() {
		return false
	}
	e.key = Nil
	e.value = True
	return true
}

// FindString looks up an interned string by its raw bytes and hash without
// allocating a String object first, as spec.md §4.5's tableFindString
// requires: compares byte-wise against the stored strings, used during
// interning before a new String would otherwise be allocated.
func (t *Table) FindString(chars string, hash uint32) *String {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	idx := int(hash) % capacity
	for {
		e := &t.entries[idx]
		switch {
		case e.empty():
			return nil
		case e.tombstone():
			// keep probing
		default:
			if s, ok := e.key.(*String); ok && s.Hash == hash && s.Chars == chars {
				return s
			}
		}
		idx = (idx + 1) % capacity
	}
}

// Each calls fn for every live key/value pair. fn must not mutate the table.
func (t *Table) Each(fn func(key, value Value)) {
	for _, e := range t.entries {
		if e.empty() || e.tombstone() {
			continue
		}
		fn(e.key, e.value)
	}
}
