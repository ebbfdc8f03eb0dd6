package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/time-loop/typedorm/dynamodb/ddbsdk"
	"github.com/time-loop/typedorm/dynamodb/expr"
	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <partition-key-value>",
		Short: "Query one partition of a table and print the items as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}
			applyTableFlags(cmd, &cfg)
			t, err := cfg.TableDefinition()
			if err != nil {
				return err
			}
			logger := loggerFromCmd(cmd, cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			awsCfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			client := ddbsdk.New(dynamodb.NewFromConfig(awsCfg), ddbsdk.WithLogger(logger))

			q, err := buildQuery(cmd, client, t, args[0])
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			var res *ddbsdk.QueryResult
			if all {
				res, err = q.QueryAll(ctx)
			} else {
				res, err = q.Next(ctx)
			}
			if err != nil {
				return err
			}

			var items []map[string]any
			if err := attributevalue.UnmarshalListOfMaps(res.Items, &items); err != nil {
				return fmt.Errorf("unmarshal items: %w", err)
			}
			logger.Info("query done", "table", t.Name, "items", len(items), "done", res.IsDone)
			return newPrinter(cmd.OutOrStdout(), cfg).json(items)
		},
	}
	addTableFlags(cmd)
	cmd.Flags().String("sort", "", `sort key operand as YAML, e.g. '{BEGINS_WITH: "ORDER#"}'`)
	cmd.Flags().String("filter", "", "filter specification file")
	cmd.Flags().String("index", "", "global secondary index to query")
	cmd.Flags().StringSlice("project", nil, "attributes to return")
	cmd.Flags().Int("limit", 0, "page size")
	cmd.Flags().Bool("desc", false, "return items in descending sort key order")
	cmd.Flags().Bool("all", false, "follow pagination until the partition is exhausted")
	cmd.Flags().Bool("eventually-consistent", false, "use eventually consistent reads")
	return cmd
}

func buildQuery(cmd *cobra.Command, r ddbsdk.Reader, t table.TableDefinition, partition string) (*ddbsdk.Querier, error) {
	var filter dsl.Spec
	if path, _ := cmd.Flags().GetString("filter"); path != "" {
		data, err := readInput(cmd, path)
		if err != nil {
			return nil, err
		}
		if filter, err = dsl.FromYAML(data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	q := r.NewQuery(t, partition, filter)
	if sort, _ := cmd.Flags().GetString("sort"); sort != "" {
		op, err := decodeOperand(sort)
		if err != nil {
			return nil, fmt.Errorf("--sort: %w", err)
		}
		q = q.WithSortKey(op)
	}
	if index, _ := cmd.Flags().GetString("index"); index != "" {
		q = q.WithGSI(index)
	}
	if attrs, _ := cmd.Flags().GetStringSlice("project"); len(attrs) > 0 {
		q = q.WithProjection(attrs...)
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		q = q.WithPageSize(limit)
	}
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		q = q.WithDescending()
	}
	if ec, _ := cmd.Flags().GetBool("eventually-consistent"); ec {
		q = q.WithEventuallyConsistentReads()
	}
	return q, nil
}

// decodeOperand decodes a single operand by wrapping it in a one-entry specification.
func decodeOperand(data string) (dsl.Operand, error) {
	var value yaml.Node
	if err := yaml.Unmarshal([]byte(data), &value); err != nil {
		return nil, err
	}
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = *value.Content[0]
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "key"},
		&value,
	}}
	var spec dsl.Spec
	if err := spec.UnmarshalYAML(doc); err != nil {
		return nil, err
	}
	op, ok := spec[0].Node.(dsl.Operand)
	if !ok {
		return nil, expr.ShapeError("key", "expected an operand")
	}
	return op, nil
}
