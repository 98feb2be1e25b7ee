package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableOps(t *testing.T) {
	base := Table{Rows: [][]string{{"Name", "Ticker"}, {"Radix", "XRD"}}, HasHeader: true}

	t.Run("add column keeps rows symmetric", func(t *testing.T) {
		result := base.AddColumn()
		assert.Equal(t, [][]string{{"Name", "Ticker", ""}, {"Radix", "XRD", ""}}, result.Rows)
		assert.Equal(t, 2, base.Width())
	})
	t.Run("delete column", func(t *testing.T) {
		result := base.DeleteColumn(0)
		assert.Equal(t, [][]string{{"Ticker"}, {"XRD"}}, result.Rows)
	})
	t.Run("deleting the last column is a no-op", func(t *testing.T) {
		single := Table{Rows: [][]string{{"a"}, {"b"}}}
		assert.Equal(t, single.Rows, single.DeleteColumn(0).Rows)
	})
	t.Run("add and delete rows", func(t *testing.T) {
		result := base.AddRow()
		assert.Equal(t, []string{"", ""}, result.Rows[2])
		assert.Len(t, result.DeleteRow(0).Rows, 2)
		assert.Len(t, Table{Rows: [][]string{{"x"}}}.DeleteRow(0).Rows, 1)
	})
	t.Run("ragged rows are normalized to the first row", func(t *testing.T) {
		ragged := Table{Rows: [][]string{{"a", "b"}, {"c"}, {"d", "e", "f"}}}
		assert.Equal(t, [][]string{{"a", "b"}, {"c", ""}, {"d", "e"}}, ragged.Normalize().Rows)
		assert.Equal(t, [][]string{{"a", "b", ""}, {"c", "", ""}, {"d", "e", ""}}, ragged.AddColumn().Rows)
	})
	t.Run("empty table", func(t *testing.T) {
		assert.Equal(t, [][]string{{""}}, Table{}.Normalize().Rows)
	})
	t.Run("set cell", func(t *testing.T) {
		result := base.SetCell(1, 1, "xrd")
		assert.Equal(t, "xrd", result.Rows[1][1])
		assert.Equal(t, "XRD", base.Rows[1][1])
		assert.Equal(t, result.Rows, result.SetCell(9, 9, "nope").Rows)
	})
	t.Run("header and body", func(t *testing.T) {
		assert.Equal(t, []string{"Name", "Ticker"}, base.Header())
		assert.Equal(t, [][]string{{"Radix", "XRD"}}, base.Body())
		noHeader := Table{Rows: base.Rows}
		assert.Nil(t, noHeader.Header())
		assert.Len(t, noHeader.Body(), 2)
	})
}
