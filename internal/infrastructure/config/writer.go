package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var tableHeader = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*$`)

// WriteConfig encodes cfg as TOML and writes it to path. Fields keep their
// struct order; tables are sorted by name so output is stable.
func WriteConfig(cfg *Config, path string) error {
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeConfig returns cfg as sorted, indented TOML.
func EncodeConfig(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(sortTables(buf.String())), nil
}

// sortTables reorders TOML tables by their dotted name, keeping each
// table's body attached to its header. Keys before the first header stay first.
func sortTables(content string) string {
	type table struct {
		name  string
		lines []string
	}

	var (
		head   []string
		tables []table
	)
	for _, line := range strings.Split(content, "\n") {
		if m := tableHeader.FindStringSubmatch(line); m != nil {
			tables = append(tables, table{name: m[1], lines: []string{line}})
			continue
		}
		if len(tables) == 0 {
			head = append(head, line)
			continue
		}
		last := &tables[len(tables)-1]
		last.lines = append(last.lines, line)
	}

	slices.SortStableFunc(tables, func(a, b table) int {
		return strings.Compare(a.name, b.name)
	})

	out := head
	for _, t := range tables {
		body := t.lines
		for len(body) > 1 && strings.TrimSpace(body[len(body)-1]) == "" {
			body = body[:len(body)-1]
		}
		out = append(out, body...)
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
