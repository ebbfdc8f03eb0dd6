package ddbsdk

import (
	"log/slog"

	"github.com/time-loop/typedorm/dynamodb/expr/dsl"
	"github.com/time-loop/typedorm/dynamodb/table"
	"github.com/time-loop/typedorm/internal/logging"
)

type ClientOption func(*Client)

// WithLogger logs every compiled request at debug level.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(awsddb AWSDynamoClientV2, opts ...ClientOption) *Client {
	c := &Client{awsddb: awsddb}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Default(c.logger).With("component", "ddbsdk")
	return c
}

type Client struct {
	awsddb AWSDynamoClientV2
	logger *slog.Logger
}

var _ IO = &Client{}

// NewQuery creates a querier over one partition of t, optionally filtered by filter.
//
// Configure with method chaining: WithSortKey, WithDescending, WithPageSize, WithProjection, WithGSI, WithEventuallyConsistentReads.
func (c *Client) NewQuery(t table.TableDefinition, partition any, filter dsl.Spec) *Querier {
	q := NewQuerier(c.awsddb, t, partition).WithLogger(c.logger)
	if len(filter) > 0 {
		q = q.WithFilter(filter)
	}
	return q
}
