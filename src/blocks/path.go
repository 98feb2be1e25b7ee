package blocks

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a block: [i] at the top level, or [i, list, j] for block j
// of nested list `list` inside the container at i.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

func (p Path) IsNested() bool {
	return len(p) == 3
}

func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 1 && len(parts) != 3 {
		return nil, fmt.Errorf("invalid block path %q", s)
	}
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid block path %q", s)
		}
		p[i] = n
	}
	return p, nil
}

func Get(content []Block, p Path) (Block, bool) {
	switch len(p) {
	case 1:
		if p[0] < len(content) {
			return content[p[0]], true
		}
	case 3:
		if list, ok := List(content, p[0], p[1]); ok && p[2] < len(list) {
			return list[p[2]], true
		}
	}
	return Block{}, false
}

// Set returns a copy of content with the block at p replaced by b.
func Set(content []Block, p Path, b Block) ([]Block, bool) {
	if _, ok := Get(content, p); !ok {
		return content, false
	}
	if len(p) == 1 {
		ed := NewEditor(content, nil)
		ed.Update(p[0], b)
		return ed.Blocks, true
	}
	list, _ := List(content, p[0], p[1])
	ed := NewEditor(list, nil)
	ed.Update(p[2], b)
	return WithList(content, p[0], p[1], ed.Blocks)
}

// Walk visits every block, each container before its nested blocks.
func Walk(content []Block, fn func(b Block, p Path)) {
	for i, b := range content {
		fn(b, Path{i})
		if c, ok := b.Data.(Container); ok {
			for j, list := range c.Lists() {
				for k, nested := range list {
					fn(nested, Path{i, j, k})
				}
			}
		}
	}
}
