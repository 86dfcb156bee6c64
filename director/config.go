package director

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// builtinTree is the destination tree used when nothing overrides it.
const builtinTree = "events"

// Directive is an explicit per-table override: the destination/source tree
// and an optional column subset.
type Directive struct {
	Tree    string
	Columns []string
}

// Config resolves a tree per table kind under the fixed override priority:
// explicit per-table directive > global default flag > configuration-file
// default > built-in default.
type Config struct {
	// Dir is the base directory trees live under.
	Dir string

	// FlagTree is the global default tree supplied on the command line.
	FlagTree string

	// FileTree is the default tree read from the configuration file.
	FileTree string

	// RollEvery starts a new output file after this many merged batches.
	// Zero disables rolling.
	RollEvery int

	// PerTable holds explicit per-table directives, keyed by table kind.
	PerTable map[string]Directive
}

// LoadConfig reads the [io] section of an INI file plus one [io.<kind>]
// child section per table directive:
//
//	[io]
//	tree = merged
//	roll_every = 10
//
//	[io.Tracks]
//	tree = tracking
//	columns = id, eta
func LoadConfig(path string) (Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load director config: %w", err)
	}
	cfg := Config{PerTable: make(map[string]Directive)}

	io := f.Section("io")
	cfg.FileTree = io.Key("tree").String()
	if io.HasKey("roll_every") {
		n, err := io.Key("roll_every").Int()
		if err != nil {
			return Config{}, fmt.Errorf("roll_every is not an integer: %w", err)
		}
		cfg.RollEvery = n
	}

	for _, child := range f.ChildSections("io") {
		kind := strings.TrimPrefix(child.Name(), "io.")
		d := Directive{Tree: child.Key("tree").String()}
		if child.HasKey("columns") {
			for _, c := range strings.Split(child.Key("columns").String(), ",") {
				if c = strings.TrimSpace(c); c != "" {
					d.Columns = append(d.Columns, c)
				}
			}
		}
		cfg.PerTable[kind] = d
	}
	return cfg, nil
}

// Tree resolves the destination/source tree for a table kind.
func (c Config) Tree(kind string) string {
	if d, ok := c.PerTable[kind]; ok && d.Tree != "" {
		return d.Tree
	}
	if c.FlagTree != "" {
		return c.FlagTree
	}
	if c.FileTree != "" {
		return c.FileTree
	}
	return builtinTree
}

// Columns resolves the column subset for a table kind; nil means all stored
// columns.
func (c Config) Columns(kind string) []string {
	if d, ok := c.PerTable[kind]; ok {
		return d.Columns
	}
	return nil
}
