package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoboxIndex(t *testing.T) {
	a := textBlock("A", "")
	i1 := Block{ID: "I1", Data: Infobox{Title: "first"}}
	i2 := Block{ID: "I2", Data: Infobox{Title: "second"}}

	assert.Equal(t, 1, InfoboxIndex([]Block{a, i1, i2}))
	assert.Equal(t, 0, InfoboxIndex([]Block{i2, a, i1}))
	assert.Equal(t, -1, InfoboxIndex([]Block{a}))
	assert.Equal(t, 2, CountInfoboxes([]Block{a, i1, i2}))
}

func TestInfoboxRows(t *testing.T) {
	ib := Infobox{Rows: []InfoboxRow{{Key: "Supply", Value: "24bn"}}}
	grown := ib.AddRow()
	assert.Len(t, grown.Rows, 2)
	assert.Len(t, ib.Rows, 1)
	assert.Empty(t, grown.RemoveRow(0).RemoveRow(0).Rows)
	assert.Len(t, grown.RemoveRow(5).Rows, 2)
}
