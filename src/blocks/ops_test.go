package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textBlock(id, text string) Block {
	return Block{ID: id, Data: Content{Text: text}}
}

func ids(content []Block) []string {
	var result []string
	for _, b := range content {
		result = append(result, b.ID)
	}
	return result
}

func TestInsert(t *testing.T) {
	t.Run("defaults to the end with the default shape", func(t *testing.T) {
		ed := NewEditor([]Block{textBlock("a", "")}, New)
		require.NoError(t, ed.Insert(TypeRecentPages))

		require.Len(t, ed.Blocks, 2)
		assert.Equal(t, 1, ed.Selected)
		inserted := ed.Blocks[1]
		assert.NotEmpty(t, inserted.ID)
		assert.Equal(t, RecentPages{Limit: 5}, inserted.Data)
	})
	t.Run("at index", func(t *testing.T) {
		ed := NewEditor([]Block{textBlock("a", ""), textBlock("b", "")}, New)
		require.NoError(t, ed.InsertAt(TypeDivider, 1))
		assert.Equal(t, TypeDivider, ed.Blocks[1].Type())
		assert.Equal(t, 1, ed.Selected)
	})
	t.Run("index past the end is clamped", func(t *testing.T) {
		ed := NewEditor([]Block{textBlock("a", "")}, New)
		require.NoError(t, ed.InsertAt(TypeQuote, 99))
		assert.Equal(t, TypeQuote, ed.Blocks[1].Type())
	})
	t.Run("table default is 2x2 with header", func(t *testing.T) {
		ed := NewEditor(nil, New)
		require.NoError(t, ed.Insert(TypeTable))
		assert.Equal(t, Table{Rows: [][]string{{"", ""}, {"", ""}}, HasHeader: true}, ed.Blocks[0].Data)
	})
	t.Run("column editors refuse containers", func(t *testing.T) {
		ed := NewEditor(nil, NewAtomic)
		assert.ErrorIs(t, ed.Insert(TypeColumns), ErrNotAtomic)
		assert.ErrorIs(t, ed.Insert(TypeInfobox), ErrNotAtomic)
		assert.Empty(t, ed.Blocks)
		assert.NoError(t, ed.Insert(TypeContent))
	})
	t.Run("unknown type", func(t *testing.T) {
		ed := NewEditor(nil, New)
		assert.ErrorIs(t, ed.Insert("carousel"), ErrUnknownType)
	})
	t.Run("original slice untouched", func(t *testing.T) {
		original := make([]Block, 1, 4)
		original[0] = textBlock("a", "")
		ed := NewEditor(original, New)
		require.NoError(t, ed.InsertAt(TypeDivider, 0))
		assert.Equal(t, "a", original[0].ID)
		assert.Len(t, original, 1)
	})
}

func TestRemove(t *testing.T) {
	ed := NewEditor([]Block{textBlock("a", ""), textBlock("b", ""), textBlock("c", "")}, New)
	ed.Select(2)
	ed.Remove(1)
	assert.Equal(t, []string{"a", "c"}, ids(ed.Blocks))
	assert.Equal(t, NoSelection, ed.Selected)

	ed.Remove(5)
	assert.Equal(t, []string{"a", "c"}, ids(ed.Blocks))
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		expected []string
		selected int
	}{
		{"down", 0, 2, []string{"b", "c", "a"}, 2},
		{"up", 2, 0, []string{"c", "a", "b"}, 0},
		{"to out of bounds", 1, 3, []string{"a", "b", "c"}, NoSelection},
		{"negative to", 1, -1, []string{"a", "b", "c"}, NoSelection},
		{"from out of bounds", 7, 0, []string{"a", "b", "c"}, NoSelection},
		{"in place", 1, 1, []string{"a", "b", "c"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := NewEditor([]Block{textBlock("a", ""), textBlock("b", ""), textBlock("c", "")}, New)
			ed.Move(tt.from, tt.to)
			assert.Equal(t, tt.expected, ids(ed.Blocks))
			assert.Equal(t, tt.selected, ed.Selected)
		})
	}
}

func TestDuplicate(t *testing.T) {
	t.Run("columns are deep-cloned with fresh ids", func(t *testing.T) {
		cols := Block{ID: "cols", Data: Columns{Columns: []Column{
			{ID: "c1", Blocks: []Block{textBlock("n1", "left")}},
			{ID: "c2", Blocks: []Block{{ID: "n2", Data: NewTable(2, 2)}}},
		}}}
		ed := NewEditor([]Block{cols}, New)
		ed.Duplicate(0)

		require.Len(t, ed.Blocks, 2)
		assert.Equal(t, 1, ed.Selected)
		dup := ed.Blocks[1].Data.(Columns)
		assert.NotEqual(t, "cols", ed.Blocks[1].ID)
		assert.NotEqual(t, "c1", dup.Columns[0].ID)
		assert.NotEqual(t, "c2", dup.Columns[1].ID)
		assert.NotEqual(t, "n1", dup.Columns[0].Blocks[0].ID)
		assert.Equal(t, "left", dup.Columns[0].Blocks[0].Data.(Content).Text)

		// editing the copy leaves the original alone
		dupTable := dup.Columns[1].Blocks[0].Data.(Table)
		dupTable.Rows[0][0] = "changed"
		origTable := ed.Blocks[0].Data.(Columns).Columns[1].Blocks[0].Data.(Table)
		assert.Equal(t, "", origTable.Rows[0][0])
		assert.NoError(t, Validate(ed.Blocks))
	})
	t.Run("inserted right after the original", func(t *testing.T) {
		ed := NewEditor([]Block{textBlock("a", "x"), textBlock("b", "")}, New)
		ed.Duplicate(0)
		assert.Equal(t, "a", ed.Blocks[0].ID)
		assert.Equal(t, "x", ed.Blocks[1].Data.(Content).Text)
		assert.Equal(t, "b", ed.Blocks[2].ID)
	})
	t.Run("infobox rows and blocks", func(t *testing.T) {
		ib := Block{ID: "ib", Data: Infobox{
			Title:  "XRD",
			Rows:   []InfoboxRow{{Key: "Supply", Value: "24bn"}},
			Blocks: []Block{textBlock("inner", "")},
		}}
		clone := Clone(ib)
		data := clone.Data.(Infobox)
		data.Rows[0].Value = "changed"
		assert.Equal(t, "24bn", ib.Data.(Infobox).Rows[0].Value)
		assert.NotEqual(t, "inner", data.Blocks[0].ID)
	})
}

func TestUpdate(t *testing.T) {
	original := []Block{textBlock("a", "old")}
	ed := NewEditor(original, New)
	ed.Update(0, textBlock("a", "new"))
	assert.Equal(t, "new", ed.Blocks[0].Data.(Content).Text)
	assert.Equal(t, "old", original[0].Data.(Content).Text)

	ed.Update(3, textBlock("z", ""))
	assert.Len(t, ed.Blocks, 1)
}

func TestPaths(t *testing.T) {
	content := []Block{
		textBlock("a", ""),
		{ID: "cols", Data: Columns{Columns: []Column{
			{ID: "c1", Blocks: []Block{textBlock("n1", "")}},
			{ID: "c2"},
		}}},
	}

	p, err := ParsePath("1.0.0")
	require.NoError(t, err)
	b, ok := Get(content, p)
	assert.True(t, ok)
	assert.Equal(t, "n1", b.ID)
	assert.Equal(t, "1.0.0", p.String())

	updated, ok := Set(content, p, textBlock("n1", "changed"))
	assert.True(t, ok)
	b, _ = Get(updated, p)
	assert.Equal(t, "changed", b.Data.(Content).Text)
	b, _ = Get(content, p)
	assert.Equal(t, "", b.Data.(Content).Text)

	_, ok = Get(content, Path{1, 1, 0})
	assert.False(t, ok)
	_, ok = Get(content, Path{0, 0, 0})
	assert.False(t, ok)

	for _, bad := range []string{"", "1.2", "a", "-1", "1.2.3.4"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}

	var visited []string
	Walk(content, func(b Block, p Path) {
		visited = append(visited, b.ID+"@"+p.String())
	})
	assert.Equal(t, []string{"a@0", "cols@1", "n1@1.0.0"}, visited)
}

func TestColumnsHelpers(t *testing.T) {
	cols := Columns{Columns: []Column{{ID: "c1"}}}
	assert.Len(t, cols.RemoveColumn(0).Columns, 1)

	grown := cols.AddColumn().AddColumn().AddColumn().AddColumn()
	assert.Len(t, grown.Columns, MaxColumnCount)
	assert.Len(t, cols.Columns, 1)
	assert.Len(t, grown.RemoveColumn(0).Columns, MaxColumnCount-1)
}
