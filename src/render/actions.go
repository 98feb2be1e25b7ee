package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/radixwiki/wiki/src/blocks"
)

var ErrInvalidAction = errors.New("invalid editor action")

// Action is one button press in the block editor, submitted as
// "verb:path" or "verb:path:arg".
type Action struct {
	Verb string
	Path blocks.Path
	Arg  string
}

func ParseAction(s string) (Action, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return Action{}, fmt.Errorf("%w %q", ErrInvalidAction, s)
	}
	path, err := blocks.ParsePath(parts[1])
	if err != nil {
		return Action{}, fmt.Errorf("%w %q: %v", ErrInvalidAction, s, err)
	}
	a := Action{Verb: parts[0], Path: path}
	if len(parts) == 3 {
		a.Arg = parts[2]
	}
	return a, nil
}

func (a Action) String() string {
	s := a.Verb + ":" + a.Path.String()
	if a.Arg != "" {
		s += ":" + a.Arg
	}
	return s
}

func (a Action) intArg() (int, error) {
	n, err := strconv.Atoi(a.Arg)
	if err != nil {
		return 0, fmt.Errorf("%w %q: bad argument", ErrInvalidAction, a)
	}
	return n, nil
}

// Apply performs the action on a copy of content. It returns the new
// content and the path of the block to highlight, which is nil when nothing
// should be selected. Top-level lists may hold any block type, nested lists
// only atomic ones.
func (a Action) Apply(content []blocks.Block) ([]blocks.Block, blocks.Path, error) {
	switch a.Verb {
	case "insert", "remove", "duplicate", "up", "down":
		return a.applyToList(content)
	case "table-add-row", "table-delete-row", "table-add-column", "table-delete-column":
		return a.updatePayload(content, func(p blocks.Payload) (blocks.Payload, error) {
			t, ok := p.(blocks.Table)
			if !ok {
				return nil, fmt.Errorf("%w %q: not a table", ErrInvalidAction, a)
			}
			switch a.Verb {
			case "table-add-row":
				return t.AddRow(), nil
			case "table-add-column":
				return t.AddColumn(), nil
			}
			n, err := a.intArg()
			if err != nil {
				return nil, err
			}
			if a.Verb == "table-delete-row" {
				return t.DeleteRow(n), nil
			}
			return t.DeleteColumn(n), nil
		})
	case "columns-add", "columns-remove":
		return a.updatePayload(content, func(p blocks.Payload) (blocks.Payload, error) {
			c, ok := p.(blocks.Columns)
			if !ok {
				return nil, fmt.Errorf("%w %q: not a columns block", ErrInvalidAction, a)
			}
			if a.Verb == "columns-add" {
				return c.AddColumn(), nil
			}
			n, err := a.intArg()
			if err != nil {
				return nil, err
			}
			return c.RemoveColumn(n), nil
		})
	case "infobox-add-row", "infobox-remove-row":
		return a.updatePayload(content, func(p blocks.Payload) (blocks.Payload, error) {
			ib, ok := p.(blocks.Infobox)
			if !ok {
				return nil, fmt.Errorf("%w %q: not an infobox", ErrInvalidAction, a)
			}
			if a.Verb == "infobox-add-row" {
				return ib.AddRow(), nil
			}
			n, err := a.intArg()
			if err != nil {
				return nil, err
			}
			return ib.RemoveRow(n), nil
		})
	}
	return content, nil, fmt.Errorf("%w %q: unknown verb", ErrInvalidAction, a)
}

func (a Action) applyToList(content []blocks.Block) ([]blocks.Block, blocks.Path, error) {
	var list []blocks.Block
	create := blocks.CreateFunc(blocks.New)
	if a.Path.IsNested() {
		var ok bool
		list, ok = blocks.List(content, a.Path[0], a.Path[1])
		if !ok {
			return content, nil, fmt.Errorf("%w %q: %v", ErrInvalidAction, a, blocks.ErrInvalidTarget)
		}
		create = blocks.NewAtomic
	} else {
		list = content
	}

	i := a.Path[len(a.Path)-1]
	ed := blocks.NewEditor(list, create)
	switch a.Verb {
	case "insert":
		if err := ed.InsertAt(blocks.Type(a.Arg), i); err != nil {
			return content, nil, err
		}
	case "remove":
		ed.Remove(i)
	case "duplicate":
		ed.Duplicate(i)
	case "up":
		ed.Move(i, i-1)
	case "down":
		ed.Move(i, i+1)
	}

	var selected blocks.Path
	if ed.Selected != blocks.NoSelection {
		selected = append(blocks.Path(nil), a.Path...)
		selected[len(selected)-1] = ed.Selected
	}

	if !a.Path.IsNested() {
		return ed.Blocks, selected, nil
	}
	result, _ := blocks.WithList(content, a.Path[0], a.Path[1], ed.Blocks)
	return result, selected, nil
}

func (a Action) updatePayload(content []blocks.Block, fn func(blocks.Payload) (blocks.Payload, error)) ([]blocks.Block, blocks.Path, error) {
	b, ok := blocks.Get(content, a.Path)
	if !ok {
		return content, nil, fmt.Errorf("%w %q: %v", ErrInvalidAction, a, blocks.ErrInvalidTarget)
	}
	payload, err := fn(b.Data)
	if err != nil {
		return content, nil, err
	}
	result, _ := blocks.Set(content, a.Path, blocks.Block{ID: b.ID, Data: payload})
	return result, a.Path, nil
}
