package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/table"
)

const configFileName = "typedorm.yaml"

// Config holds the settings of the exprc command.
// Loaded from typedorm.yaml if present.
type Config struct {
	// Separator splits nested attribute paths in update items. Defaults to ".".
	// Set it to an empty string to treat every key as a single attribute name.
	Separator *string `yaml:"separator"`

	// Indent is the JSON output indentation. Defaults to two spaces.
	Indent *string `yaml:"indent"`

	LogLevel string `yaml:"logLevel"`

	// Table is the default table for the unique and query commands.
	Table TableConfig `yaml:"table"`
}

type TableConfig struct {
	Name         string        `yaml:"name"`
	PartitionKey KeyConfig     `yaml:"partitionKey"`
	SortKey      KeyConfig     `yaml:"sortKey"`
	GSIs         []IndexConfig `yaml:"gsis"`
}

type IndexConfig struct {
	Name         string    `yaml:"name"`
	PartitionKey KeyConfig `yaml:"partitionKey"`
	SortKey      KeyConfig `yaml:"sortKey"`
}

type KeyConfig struct {
	Name string `yaml:"name"`
	// Kind is S, N or B. Defaults to S.
	Kind string `yaml:"kind"`
}

func (k KeyConfig) def() table.KeyDef {
	if k.Name == "" {
		return table.KeyDef{}
	}
	kind := table.KeyKind(k.Kind)
	if kind == "" {
		kind = table.KeyKindS
	}
	return table.KeyDef{Name: k.Name, Kind: kind}
}

func (c Config) separator() string {
	if c.Separator == nil {
		return expr.PathSeparator
	}
	return *c.Separator
}

func (c Config) indent() string {
	if c.Indent == nil {
		return "  "
	}
	return *c.Indent
}

// TableDefinition converts the table section, failing when it is incomplete.
func (c Config) TableDefinition() (table.TableDefinition, error) {
	t := c.tableDefinition()
	if err := t.Validate(); err != nil {
		return table.TableDefinition{}, fmt.Errorf("table config: %w", err)
	}
	return t, nil
}

func (c Config) tableDefinition() table.TableDefinition {
	t := table.TableDefinition{
		Name: c.Table.Name,
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: c.Table.PartitionKey.def(),
			SortKey:      c.Table.SortKey.def(),
		},
	}
	for _, g := range c.Table.GSIs {
		t.GSIs = append(t.GSIs, table.GSIDefinition{
			Name: g.Name,
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: g.PartitionKey.def(),
				SortKey:      g.SortKey.def(),
			},
		})
	}
	return t
}

// LoadConfig reads path, or the nearest typedorm.yaml when path is empty.
// A missing typedorm.yaml yields the defaults; a missing explicit path is an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		dir, err := os.Getwd()
		if err != nil {
			return cfg, err
		}
		path = findConfigFile(dir)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile searches for typedorm.yaml walking up from dir.
func findConfigFile(dir string) string {
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

func configFromCmd(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return LoadConfig(path)
}
