package blocks

import "slices"

const NoSelection = -1

// Editor applies the editing operations to one ordered list of blocks: the
// page itself, or a single column. Create decides which types may be
// inserted, so a column editor uses NewAtomic.
//
// Every operation leaves Blocks pointing at a new slice; a slice handed out
// earlier is never modified.
type Editor struct {
	Blocks   []Block
	Selected int
	Create   CreateFunc
}

func NewEditor(content []Block, create CreateFunc) *Editor {
	return &Editor{
		Blocks:   content,
		Selected: NoSelection,
		Create:   create,
	}
}

// Insert appends a new block of type t and selects it.
func (e *Editor) Insert(t Type) error {
	return e.InsertAt(t, len(e.Blocks))
}

// InsertAt inserts a new block of type t at index at (clamped to the list)
// and selects it.
func (e *Editor) InsertAt(t Type, at int) error {
	b, err := e.Create(t)
	if err != nil {
		return err
	}
	at = max(0, min(at, len(e.Blocks)))
	e.Blocks = slices.Insert(slices.Clone(e.Blocks), at, b)
	e.Selected = at
	return nil
}

// Remove deletes the block at i and clears the selection.
func (e *Editor) Remove(i int) {
	if !e.inBounds(i) {
		return
	}
	e.Blocks = slices.Delete(slices.Clone(e.Blocks), i, i+1)
	e.Selected = NoSelection
}

// Duplicate inserts a deep copy of block i, with fresh ids throughout,
// directly after it and selects the copy.
func (e *Editor) Duplicate(i int) {
	if !e.inBounds(i) {
		return
	}
	e.Blocks = slices.Insert(slices.Clone(e.Blocks), i+1, Clone(e.Blocks[i]))
	e.Selected = i + 1
}

// Move relocates block from to index to and selects it there. Out of range
// indices leave everything unchanged.
func (e *Editor) Move(from, to int) {
	if !e.inBounds(from) || !e.inBounds(to) {
		return
	}
	if from == to {
		e.Selected = to
		return
	}
	moved := e.Blocks[from]
	without := slices.Delete(slices.Clone(e.Blocks), from, from+1)
	e.Blocks = slices.Insert(without, to, moved)
	e.Selected = to
}

// Update replaces block i with b. The caller builds b as a modified copy.
func (e *Editor) Update(i int, b Block) {
	if !e.inBounds(i) {
		return
	}
	blocks := slices.Clone(e.Blocks)
	blocks[i] = b
	e.Blocks = blocks
}

func (e *Editor) Select(i int) {
	if e.inBounds(i) {
		e.Selected = i
	} else {
		e.Selected = NoSelection
	}
}

func (e *Editor) inBounds(i int) bool {
	return i >= 0 && i < len(e.Blocks)
}
