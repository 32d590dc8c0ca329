package lambda

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	values map[string]string
	err    error
	input  *ssm.GetParametersInput
}

func (f *fakeSSM) GetParameters(ctx context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := f.values[name]; ok {
			out.Parameters = append(out.Parameters, types.Parameter{Name: aws.String(name), Value: aws.String(v)})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, name)
		}
	}
	return out, nil
}

func TestLoadConfigFromSSM(t *testing.T) {
	client := &fakeSSM{values: map[string]string{
		"/tpsgraph/store/dynamodb_table": "tps-history",
		"/tpsgraph/store/app":            "payments",
		"/tpsgraph/graph/width":          "640",
		"/tpsgraph/graph/timezone":       "Europe/London",
		"/tpsgraph/publish/bucket":       "graphs-bucket",
	}}

	cfg, err := NewSSMConfigLoaderWithClient(client, "").LoadConfig(context.Background())
	require.NoError(t, err)

	assert.True(t, *client.input.WithDecryption)
	assert.Equal(t, "tps-history", cfg.Store.DynamoDBTable)
	assert.Equal(t, "payments", cfg.Store.App)
	assert.Equal(t, 640, cfg.Graph.Width)
	assert.Equal(t, 500, cfg.Graph.Height)
	assert.Equal(t, "Europe/London", cfg.Graph.Timezone)
	assert.Equal(t, "graphs-bucket", cfg.Publish.Bucket)
	assert.Equal(t, "graphs", cfg.Publish.Prefix)
}

func TestLoadConfigFromSSMMissingTable(t *testing.T) {
	client := &fakeSSM{values: map[string]string{"/tpsgraph/store/app": "payments"}}

	_, err := NewSSMConfigLoaderWithClient(client, "").LoadConfig(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "/tpsgraph/store/dynamodb_table")
	assert.NotEmpty(t, cfgErr.Details)
}

func TestLoadConfigFromSSMBadTimezone(t *testing.T) {
	client := &fakeSSM{values: map[string]string{
		"/staging/store/dynamodb_table": "tps-history",
		"/staging/graph/timezone":       "Nowhere/Special",
	}}

	_, err := NewSSMConfigLoaderWithClient(client, "/staging").LoadConfig(context.Background())

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfigFromSSMClientError(t *testing.T) {
	client := &fakeSSM{err: errors.New("throttled")}

	_, err := NewSSMConfigLoaderWithClient(client, "").LoadConfig(context.Background())

	assert.ErrorContains(t, err, "throttled")
}

func TestParseIntWithDefault(t *testing.T) {
	assert.Equal(t, 7, parseIntWithDefault("", 7))
	assert.Equal(t, 7, parseIntWithDefault("seven", 7))
	assert.Equal(t, 12, parseIntWithDefault("12", 7))
}
