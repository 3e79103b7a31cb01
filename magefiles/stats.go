//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// statAreas are the top-level directories Stats reports separately.
var statAreas = []string{"cmd", "internal", "pkg", "magefiles"}

// locCount holds line counts for one area.
type locCount struct {
	Prod int `json:"prod"`
	Test int `json:"test"`
}

// Stats prints Go line counts per top-level area and the word count of the
// Markdown files at the repository root, as one JSON object.
func Stats() error {
	areas := make(map[string]*locCount, len(statAreas))
	for _, area := range statAreas {
		c := &locCount{}
		areas[area] = c
		if err := countArea(area, c); err != nil {
			return err
		}
	}

	var total locCount
	for _, c := range areas {
		total.Prod += c.Prod
		total.Test += c.Test
	}
	docWords, err := countMarkdownWords(".")
	if err != nil {
		return err
	}

	line, err := json.Marshal(map[string]any{
		"areas":   areas,
		"total":   total,
		"doc_wc":  docWords,
		"test_pc": percent(total.Test, total.Prod+total.Test),
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countArea(root string, c *locCount) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n := bytes.Count(data, []byte{'\n'})
		if strings.HasSuffix(path, "_test.go") {
			c.Test += n
		} else {
			c.Prod += n
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func countMarkdownWords(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return part * 100 / whole
}
