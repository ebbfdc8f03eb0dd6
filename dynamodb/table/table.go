package table

import "fmt"

// TableDefinition describes the key schema of a DynamoDB table.
type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	GSIs           []GSIDefinition
}

// GSIDefinition represents a Global Secondary Index definition.
type GSIDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
}

func (t TableDefinition) PartitionKeyName() string {
	return t.KeyDefinitions.PartitionKey.Name
}

// SortKeyName is empty for tables keyed by partition key only.
func (t TableDefinition) SortKeyName() string {
	return t.KeyDefinitions.SortKey.Name
}

// UsesCompositeKey reports whether items are identified by partition and sort key together.
func (t TableDefinition) UsesCompositeKey() bool {
	return t.KeyDefinitions.UsesCompositeKey()
}

// KeysFor returns the key schema used to query the table, or the named GSI.
func (t TableDefinition) KeysFor(indexName string) (PrimaryKeyDefinition, error) {
	if indexName == "" {
		return t.KeyDefinitions, nil
	}
	for _, gsi := range t.GSIs {
		if gsi.Name == indexName {
			return gsi.KeyDefinitions, nil
		}
	}
	return PrimaryKeyDefinition{}, fmt.Errorf("table %q has no index %q", t.Name, indexName)
}

// Validate checks that the table has a usable key schema.
func (t TableDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if t.KeyDefinitions.PartitionKey.Name == "" {
		return fmt.Errorf("table %q: partition key name is required", t.Name)
	}
	for _, gsi := range t.GSIs {
		if gsi.KeyDefinitions.PartitionKey.Name == "" {
			return fmt.Errorf("table %q: index %q: partition key name is required", t.Name, gsi.Name)
		}
	}
	return nil
}
