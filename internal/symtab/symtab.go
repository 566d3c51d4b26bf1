// Package symtab implements ALAN-2022's two-scope symbol table
// (spec.md §3, §4.3): a hash table with chaining for the current scope,
// plus an optional saved outer scope consulted read-only with
// callable-only leak-through.
package symtab

import "github.com/alan-2022/alanc/internal/valtype"

// initialDeltaIndex is the starting index into the delta table, matching
// hashtable.c's INITIAL_DELTA_INDEX.
const initialDeltaIndex = 4

const maxLoadFactor = 0.75

// delta[k] is the difference between 2^k and the largest prime below it,
// for k = 0..31 (spec.md §4.3).
var delta = [32]uint32{
	0, 0, 1, 1, 3, 1, 3, 1, 5, 3, 3, 9, 3, 1, 3, 19,
	15, 1, 5, 1, 3, 9, 3, 15, 3, 39, 5, 39, 57, 3, 35, 1,
}

type entry struct {
	key  string
	prop *valtype.IDprop
	next *entry
}

// hashtab is a chained hash table keyed by identifier bytes, sized from
// the delta table above and grown when the load factor exceeds 0.75.
type hashtab struct {
	buckets []*entry
	count   int
	idx     int

	// offset is the scope's own local-variable offset counter; each
	// scope (global/main and each subroutine) tracks it independently.
	offset uint32
}

func newHashtab() *hashtab {
	h := &hashtab{idx: initialDeltaIndex, offset: 1}
	h.buckets = make([]*entry, h.size())

	return h
}

func (h *hashtab) size() uint32 {
	return (uint32(1) << uint(h.idx+1)) - delta[h.idx+1]
}

// hash implements scanner-table's shift_hash: a 32-bit rotate-left-5
// running sum over the key's bytes, reduced modulo size-1.
func hash(key string, size uint32) uint32 {
	var h uint32

	for i := 0; i < len(key); i++ {
		h = h<<5 | h>>27
		h += uint32(key[i])
	}

	return h % (size - 1)
}

func (h *hashtab) find(key string) (*valtype.IDprop, bool) {
	k := hash(key, uint32(len(h.buckets)))

	for e := h.buckets[k]; e != nil; e = e.next {
		if e.key == key {
			return e.prop, true
		}
	}

	return nil, false
}

// insert adds key->prop to the current scope. It does not check for an
// existing entry; callers (Table.Insert, Table.OpenSubroutine) do that
// so they can distinguish "already present" from "inserted".
func (h *hashtab) insert(key string, prop *valtype.IDprop) {
	k := hash(key, uint32(len(h.buckets)))
	h.buckets[k] = &entry{key: key, prop: prop, next: h.buckets[k]}
	h.count++

	if float64(h.count)/float64(len(h.buckets)) > maxLoadFactor {
		h.rehash()
	}
}

func (h *hashtab) rehash() {
	h.idx++
	newBuckets := make([]*entry, h.size())

	for _, head := range h.buckets {
		for e := head; e != nil; {
			next := e.next
			k := hash(e.key, uint32(len(newBuckets)))
			e.next = newBuckets[k]
			newBuckets[k] = e
			e = next
		}
	}

	h.buckets = newBuckets
}

// Table is the two-level symbol table described in spec.md §3-§4.3:
// a current scope plus an optional saved outer scope, exactly one level
// deep (global + at most one open subroutine).
type Table struct {
	current *hashtab
	outer   *hashtab
}

// New creates a fresh global scope with the local-offset counter
// initialized to 1 (spec.md §4.4's off_counter starts at 1, slot 0 is
// reserved for the frame per spec.md §4.5).
func New() *Table {
	return &Table{current: newHashtab()}
}

// Insert adds name to the current scope only; it fails (returns false)
// if name already exists in the current scope. The outer scope is never
// consulted (spec.md §4.3).
func (t *Table) Insert(name string, prop *valtype.IDprop) bool {
	if _, ok := t.current.find(name); ok {
		return false
	}

	t.current.insert(name, prop)

	return true
}

// InsertVar allocates the next local-variable offset and inserts name
// with it, returning the assigned offset and whether the insert
// succeeded.
func (t *Table) InsertVar(name string, vt valtype.Type) (uint32, bool) {
	off := t.current.offset
	if !t.Insert(name, valtype.NewVar(vt, off)) {
		return 0, false
	}

	t.current.offset++

	return off, true
}

// Find looks up name. While a subroutine is open, it consults the inner
// (current) scope first; if absent, it consults the outer scope but
// only returns a match whose type is callable (spec.md §4.3).
func (t *Table) Find(name string) (*valtype.IDprop, bool) {
	if p, ok := t.current.find(name); ok {
		return p, true
	}

	if t.outer == nil {
		return nil, false
	}

	p, ok := t.outer.find(name)
	if !ok || !p.Type.IsCallable() {
		return nil, false
	}

	return p, true
}

// OpenSubroutine inserts name->prop into the current (at this point
// still outer) scope, then saves it as outer and opens a fresh, empty
// inner scope. This matches the reading of symboltable.c's
// open_subroutine documented in DESIGN.md's open-question #2: insert
// happens in the scope that is current *before* the push, not after.
func (t *Table) OpenSubroutine(name string, prop *valtype.IDprop) bool {
	if !t.Insert(name, prop) {
		return false
	}

	t.outer = t.current
	t.current = newHashtab()

	return true
}

// CloseSubroutine discards the inner scope (releasing all its entries)
// and restores the saved outer scope as current.
func (t *Table) CloseSubroutine() {
	t.current = t.outer
	t.outer = nil
}

// CurrentLocalsWidth returns the highest offset assigned in the current
// scope plus one, used by the emitter to size a subroutine's frame. It
// must be read before CloseSubroutine discards the inner scope.
func (t *Table) CurrentLocalsWidth() uint32 {
	return t.current.offset
}
