package lambda

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/christophergentle/tpsgraph/internal/config"
)

// ParameterPrefix is the SSM path all tpsgraph parameters live under.
const ParameterPrefix = "/tpsgraph"

// Parameter names relative to the prefix
const (
	paramApp         = "/store/app"
	paramTable       = "/store/dynamodb_table"
	paramBucket      = "/publish/bucket"
	paramPrefix      = "/publish/prefix"
	paramWidth       = "/graph/width"
	paramHeight      = "/graph/height"
	paramWindowHours = "/graph/window_hours"
	paramTimezone    = "/graph/timezone"
	paramTitle       = "/style/title"
)

// SSMAPI is the part of the SSM client the loader uses.
type SSMAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMConfigLoader handles loading configuration from SSM Parameter Store
type SSMConfigLoader struct {
	client SSMAPI
	prefix string
}

// NewSSMConfigLoader creates a new SSM configuration loader
func NewSSMConfigLoader(ctx context.Context) (*SSMConfigLoader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSSMConfigLoaderWithClient(ssm.NewFromConfig(cfg), ParameterPrefix), nil
}

// NewSSMConfigLoaderWithClient creates a loader on an existing client.
func NewSSMConfigLoaderWithClient(client SSMAPI, prefix string) *SSMConfigLoader {
	if prefix == "" {
		prefix = ParameterPrefix
	}
	return &SSMConfigLoader{client: client, prefix: prefix}
}

// LoadConfig loads configuration from SSM Parameter Store. Only the
// DynamoDB table is required; everything else falls back to defaults.
func (s *SSMConfigLoader) LoadConfig(ctx context.Context) (*config.Config, error) {
	names := []string{
		s.prefix + paramApp,
		s.prefix + paramTable,
		s.prefix + paramBucket,
		s.prefix + paramPrefix,
		s.prefix + paramWidth,
		s.prefix + paramHeight,
		s.prefix + paramWindowHours,
		s.prefix + paramTimezone,
		s.prefix + paramTitle,
	}

	result, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get parameters: %w", err)
	}

	required := s.prefix + paramTable
	for _, name := range result.InvalidParameters {
		if name == required {
			return nil, &ConfigError{
				Message: "Missing required parameter: " + required,
				Details: result.InvalidParameters,
			}
		}
	}

	// Create parameter map
	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[*param.Name] = *param.Value
		}
	}
	if params[required] == "" {
		return nil, &ConfigError{Message: "Missing required parameter: " + required}
	}

	cfg := &config.Config{
		Graph: config.GraphConfig{
			Width:       parseIntWithDefault(params[s.prefix+paramWidth], 0),
			Height:      parseIntWithDefault(params[s.prefix+paramHeight], 0),
			WindowHours: parseIntWithDefault(params[s.prefix+paramWindowHours], 0),
			Timezone:    params[s.prefix+paramTimezone],
		},
		Style: config.StyleConfig{
			Title: params[s.prefix+paramTitle],
		},
		Store: config.StoreConfig{
			App:           params[s.prefix+paramApp],
			DynamoDBTable: params[required],
		},
		Publish: config.PublishConfig{
			Bucket: params[s.prefix+paramBucket],
			Prefix: params[s.prefix+paramPrefix],
		},
	}

	// Fill defaults and validate like the YAML loader
	out, err := config.FromValues(cfg)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	return out, nil
}

// parseIntWithDefault parses an integer with a default value
func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + strconv.Itoa(len(e.Details)) + " invalid parameters"
	}
	return e.Message
}
