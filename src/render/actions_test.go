package render

import (
	"testing"

	"github.com/radixwiki/wiki/src/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, content []blocks.Block, action string) ([]blocks.Block, blocks.Path) {
	t.Helper()
	a, err := ParseAction(action)
	require.NoError(t, err)
	result, selected, err := a.Apply(content)
	require.NoError(t, err)
	return result, selected
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("insert:1.0.2:quote")
	require.NoError(t, err)
	assert.Equal(t, Action{Verb: "insert", Path: blocks.Path{1, 0, 2}, Arg: "quote"}, a)
	assert.Equal(t, "insert:1.0.2:quote", a.String())

	for _, bad := range []string{"", "remove", "remove:x", "remove:1.2", "up:-1"} {
		_, err := ParseAction(bad)
		assert.ErrorIs(t, err, ErrInvalidAction, bad)
	}
}

func TestListActions(t *testing.T) {
	doc := editorDocument()

	t.Run("insert at end by default position", func(t *testing.T) {
		result, selected := apply(t, doc, "insert:99:callout")
		require.Len(t, result, len(doc)+1)
		last := result[len(result)-1]
		assert.Equal(t, blocks.Callout{Variant: blocks.CalloutInfo}, last.Data)
		assert.Equal(t, blocks.Path{len(doc)}, selected)
	})
	t.Run("insert into column", func(t *testing.T) {
		result, selected := apply(t, doc, "insert:2.0.0:divider")
		list, ok := blocks.List(result, 2, 0)
		require.True(t, ok)
		require.Len(t, list, 2)
		assert.Equal(t, blocks.TypeDivider, list[0].Type())
		assert.Equal(t, blocks.Path{2, 0, 0}, selected)
	})
	t.Run("containers cannot nest", func(t *testing.T) {
		a, err := ParseAction("insert:2.0.0:columns")
		require.NoError(t, err)
		result, _, err := a.Apply(doc)
		assert.ErrorIs(t, err, blocks.ErrNotAtomic)
		assert.Equal(t, doc, result)
	})
	t.Run("remove clears selection", func(t *testing.T) {
		result, selected := apply(t, doc, "remove:0")
		assert.Len(t, result, len(doc)-1)
		assert.Nil(t, selected)
	})
	t.Run("duplicate gives fresh nested ids", func(t *testing.T) {
		result, selected := apply(t, doc, "duplicate:2")
		require.Len(t, result, len(doc)+1)
		assert.Equal(t, blocks.Path{3}, selected)
		orig := result[2].Data.(blocks.Columns)
		dup := result[3].Data.(blocks.Columns)
		assert.NotEqual(t, result[2].ID, result[3].ID)
		assert.NotEqual(t, orig.Columns[0].ID, dup.Columns[0].ID)
		assert.NotEqual(t, orig.Columns[0].Blocks[0].ID, dup.Columns[0].Blocks[0].ID)
		assert.Equal(t, orig.Columns[0].Blocks[0].Data, dup.Columns[0].Blocks[0].Data)
		assert.NoError(t, blocks.Validate(result))
	})
	t.Run("move", func(t *testing.T) {
		result, selected := apply(t, doc, "down:0")
		assert.Equal(t, "t", result[0].ID)
		assert.Equal(t, "a", result[1].ID)
		assert.Equal(t, blocks.Path{1}, selected)
	})
	t.Run("move out of bounds is a no-op", func(t *testing.T) {
		result, selected := apply(t, doc, "up:0")
		assert.Equal(t, doc, result)
		assert.Nil(t, selected)

		result, _ = apply(t, doc, "down:5")
		assert.Equal(t, doc, result)
	})
}

func TestPayloadActions(t *testing.T) {
	doc := editorDocument()

	result, selected := apply(t, doc, "table-add-row:1")
	assert.Len(t, result[1].Data.(blocks.Table).Rows, 3)
	assert.Equal(t, blocks.Path{1}, selected)

	result, _ = apply(t, doc, "table-add-column:1")
	table := result[1].Data.(blocks.Table)
	for _, row := range table.Rows {
		assert.Len(t, row, 3)
	}

	result, _ = apply(t, doc, "table-delete-column:1:0")
	assert.Equal(t, [][]string{{"h2"}, {"y"}}, result[1].Data.(blocks.Table).Rows)

	result, _ = apply(t, doc, "table-delete-row:1:1")
	assert.Equal(t, [][]string{{"h1", "h2"}}, result[1].Data.(blocks.Table).Rows)

	result, _ = apply(t, doc, "columns-add:2")
	assert.Len(t, result[2].Data.(blocks.Columns).Columns, 2)

	result, _ = apply(t, doc, "columns-remove:2:0")
	assert.Len(t, result[2].Data.(blocks.Columns).Columns, 1, "the last column stays")

	result, _ = apply(t, doc, "infobox-add-row:3")
	assert.Len(t, result[3].Data.(blocks.Infobox).Rows, 2)

	result, _ = apply(t, doc, "infobox-remove-row:3:0")
	assert.Empty(t, result[3].Data.(blocks.Infobox).Rows)

	assert.Equal(t, editorDocument(), doc)

	for _, bad := range []string{"table-add-row:0", "table-delete-row:1:x", "columns-add:1", "infobox-add-row:9", "explode:0"} {
		a, err := ParseAction(bad)
		require.NoError(t, err)
		_, _, err = a.Apply(doc)
		assert.ErrorIs(t, err, ErrInvalidAction, bad)
	}
}
