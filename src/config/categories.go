package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategories []byte

type Category struct {
	Path        string        `yaml:"path"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	AuthorOnly  bool          `yaml:"authorOnly"`
	Metadata    []MetadataKey `yaml:"metadata"`
}

// A page metadata field that the editor offers for pages in a category.
type MetadataKey struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// Categories is sorted by path.
var Categories []Category

// LoadCategories replaces Categories with the contents of the YAML file at
// path, or with the embedded defaults when path is empty.
func LoadCategories(path string) error {
	data := defaultCategories
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read categories file: %w", err)
		}
	}
	cats, err := ParseCategories(data)
	if err != nil {
		return err
	}
	Categories = cats
	return nil
}

func ParseCategories(data []byte) ([]Category, error) {
	var f categoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	seen := map[string]bool{}
	for i, cat := range f.Categories {
		cat.Path = strings.Trim(cat.Path, "/")
		if cat.Path == "" {
			return nil, fmt.Errorf("category %d has no path", i)
		}
		if seen[cat.Path] {
			return nil, fmt.Errorf("category %s is defined twice", cat.Path)
		}
		seen[cat.Path] = true
		f.Categories[i] = cat
	}
	sort.Slice(f.Categories, func(i, j int) bool {
		return f.Categories[i].Path < f.Categories[j].Path
	})
	return f.Categories, nil
}

// FindCategory returns the most specific configured category containing
// tagPath, so "contents/tech/nodes" resolves to "contents/tech".
func FindCategory(tagPath string) (Category, bool) {
	tagPath = strings.Trim(tagPath, "/")
	var best Category
	found := false
	for _, cat := range Categories {
		if tagPath == cat.Path || strings.HasPrefix(tagPath, cat.Path+"/") {
			if !found || len(cat.Path) > len(best.Path) {
				best = cat
				found = true
			}
		}
	}
	return best, found
}

func IsAuthorOnly(tagPath string) bool {
	cat, ok := FindCategory(tagPath)
	return ok && cat.AuthorOnly
}
