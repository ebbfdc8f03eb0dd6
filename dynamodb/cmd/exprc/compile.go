package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/assembler"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/expr/parser"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a specification and print the request fields as JSON",
	}
	cmd.AddCommand(
		newCompileSpecCmd("filter", "Compile a FilterExpression", func(spec dsl.Spec) (assembler.Expression, error) {
			f, err := parser.ParseToFilter(spec)
			if err != nil {
				return assembler.Expression{}, err
			}
			return assembler.BuildFilterExpression(f), nil
		}),
		newCompileSpecCmd("condition", "Compile a ConditionExpression", func(spec dsl.Spec) (assembler.Expression, error) {
			c, err := parser.ParseToCondition(spec)
			if err != nil {
				return assembler.Expression{}, err
			}
			return assembler.BuildConditionExpression(c), nil
		}),
		newCompileSpecCmd("key", "Compile a KeyConditionExpression on one key attribute", compileKeyCondition),
		newCompileUpdateCmd(),
		newCompileUniqueCmd(),
	)
	return cmd
}

func newCompileSpecCmd(use, short string, compile func(dsl.Spec) (assembler.Expression, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <spec.yaml|->",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			spec, err := dsl.FromYAML(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			e, err := compile(spec)
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), cfg).json(e.Fields())
		},
	}
}

// compileKeyCondition expects a single entry mapping the key attribute to its operand,
// e.g. `sk: {BEGINS_WITH: "ORDER#"}`.
func compileKeyCondition(spec dsl.Spec) (assembler.Expression, error) {
	if len(spec) != 1 {
		return assembler.Expression{}, expr.ArityError("", "a key condition names exactly one key attribute, got %d", len(spec))
	}
	op, ok := spec[0].Node.(dsl.Operand)
	if !ok {
		return assembler.Expression{}, expr.UnsupportedOperatorError(spec[0].Key, "combinators are not allowed in a key condition")
	}
	kc, err := parser.ParseToKeyCondition(spec[0].Key, op)
	if err != nil {
		return assembler.Expression{}, err
	}
	return assembler.BuildKeyConditionExpression(kc), nil
}

func newCompileUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <item.yaml|->",
		Short: "Compile an UpdateExpression that sets every attribute of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			sep := cfg.separator()
			if cmd.Flags().Changed("separator") {
				sep, _ = cmd.Flags().GetString("separator")
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			item, err := decodeItem(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			opts := []assembler.UpdateOption{assembler.WithNestedKeySeparator(sep)}
			if li, _ := cmd.Flags().GetBool("list-indexes"); li {
				opts = append(opts, assembler.WithListIndexes())
			}
			e, err := assembler.BuildUpdateExpression(item, opts...)
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), cfg).json(e.Fields())
		},
	}
	cmd.Flags().String("separator", expr.PathSeparator, "nested attribute separator; empty disables nesting")
	cmd.Flags().Bool("list-indexes", false, `read "name[n]" segments as list elements`)
	return cmd
}

// decodeItem reads a YAML mapping of attribute path to value, keeping document order.
func decodeItem(data []byte) (assembler.Item, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = *doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, expr.ShapeError("", "update item must be a mapping")
	}
	item := make(assembler.Item, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		var v any
		if err := doc.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Content[i].Value, err)
		}
		item = append(item, assembler.Field{Path: doc.Content[i].Value, Value: v})
	}
	return item, nil
}

func newCompileUniqueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unique",
		Short: "Compile a ConditionExpression that fails when the primary key already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			applyTableFlags(cmd, &cfg)
			if cfg.Table.PartitionKey.Name == "" {
				return fmt.Errorf("partition key is required: pass --partition-key or set table.partitionKey in %s", configFileName)
			}
			e, err := assembler.BuildUniqueRecordConditionExpression(cfg.tableDefinition())
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), cfg).json(e.Fields())
		},
	}
	addTableFlags(cmd)
	return cmd
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().String("table", "", "table name (default from config)")
	cmd.Flags().String("partition-key", "", "partition key attribute (default from config)")
	cmd.Flags().String("sort-key", "", "sort key attribute (default from config)")
}

func applyTableFlags(cmd *cobra.Command, cfg *Config) {
	if v, _ := cmd.Flags().GetString("table"); v != "" {
		cfg.Table.Name = v
	}
	if v, _ := cmd.Flags().GetString("partition-key"); v != "" {
		cfg.Table.PartitionKey = KeyConfig{Name: v}
	}
	if v, _ := cmd.Flags().GetString("sort-key"); v != "" {
		cfg.Table.SortKey = KeyConfig{Name: v}
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	return data, nil
}
