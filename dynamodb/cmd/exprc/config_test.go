package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/time-loop/typedorm/dynamodb/table"
)

const sampleConfig = `
separator: "/"
indent: ""
logLevel: debug
table:
  name: orders
  partitionKey: {name: pk}
  sortKey: {name: sk, kind: N}
  gsis:
    - name: byStatus
      partitionKey: {name: status}
`

func TestLoadConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte(sampleConfig), 0o644))
	t.Chdir(nested)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.separator())
	assert.Equal(t, "", cfg.indent())
	assert.Equal(t, "debug", cfg.LogLevel)

	td, err := cfg.TableDefinition()
	require.NoError(t, err)
	assert.Equal(t, table.TableDefinition{
		Name: "orders",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindN},
		},
		GSIs: []table.GSIDefinition{{
			Name: "byStatus",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "status", Kind: table.KeyKindS},
			},
		}},
	}, td)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.separator())
	assert.Equal(t, "  ", cfg.indent())

	_, err = cfg.TableDefinition()
	assert.ErrorContains(t, err, "table name is required")
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}
