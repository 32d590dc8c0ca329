package lambda

import (
	"context"
	"fmt"
	"log"

	"github.com/christophergentle/tpsgraph/internal/publish"
	"github.com/christophergentle/tpsgraph/internal/service"
	"github.com/christophergentle/tpsgraph/internal/state"
)

// NewGraphHandlerFromSSM builds a handler from Parameter Store settings:
// history from DynamoDB and, when a bucket is set, publishing to S3.
func NewGraphHandlerFromSSM(ctx context.Context) (*GraphHandler, error) {
	loader, err := NewSSMConfigLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	history, err := state.NewTPSHistoryManager(ctx, cfg.Store.DynamoDBTable)
	if err != nil {
		return nil, fmt.Errorf("failed to create TPS history manager: %w", err)
	}

	var publisher Publisher
	if cfg.Publish.Bucket != "" {
		p, err := publish.NewS3Publisher(ctx, cfg.Publish.Bucket, cfg.Publish.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 publisher: %w", err)
		}
		publisher = p
	}

	svc, err := service.FromConfig(cfg, history)
	if err != nil {
		return nil, err
	}

	apps := cfg.Store.Apps()
	log.Printf("Graph handler ready for %d apps (table %s)", len(apps), cfg.Store.DynamoDBTable)
	return NewGraphHandler(svc, publisher, apps), nil
}
