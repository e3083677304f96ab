package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique account IDs.
type Generator interface {
	GenerateID() int64
}

// SnowflakeGenerator implements Generator using Twitter Snowflake IDs.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator initializes a new ID generator.
// nodeID must be unique per server instance (0-1023) to prevent collisions.
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

// GenerateID returns a new unique 64-bit integer ID. The snowflake node
// serializes generation internally, so this is safe for concurrent use.
func (g *SnowflakeGenerator) GenerateID() int64 {
	return g.node.Generate().Int64()
}
