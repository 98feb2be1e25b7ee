package blocks

// InfoboxIndex returns the position of the page's infobox, the first one in
// document order, or -1 when there is none.
func InfoboxIndex(content []Block) int {
	for i, b := range content {
		if b.Type() == TypeInfobox {
			return i
		}
	}
	return -1
}

func CountInfoboxes(content []Block) int {
	n := 0
	for _, b := range content {
		if b.Type() == TypeInfobox {
			n++
		}
	}
	return n
}
