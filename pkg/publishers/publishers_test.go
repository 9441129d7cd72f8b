package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

func TestLoadConfigsNormalizesEntries(t *testing.T) {
	path := writeConfig(t, "publishers.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    enabled: true
    http:
      url: " https://example.com/2 "
      headers: {"X-Token": "abc", "X-Empty": ""}
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.eu-central-1.amazonaws.com/1/stats.fifo
      region: eu-central-1
      access_key_id: AKIA
      secret_access_key: secret
`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 3)

	assert.False(t, cfgs[0].EnabledValue())

	hook := cfgs[1]
	assert.True(t, hook.EnabledValue())
	assert.Equal(t, TypeHTTP, hook.Type)
	assert.Equal(t, "https://example.com/2", hook.HTTP.URL)
	assert.Equal(t, httpDefaultMethod, hook.HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, hook.HTTP.TimeoutSeconds)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, hook.HTTP.Headers)

	queue := cfgs[2]
	assert.True(t, queue.EnabledValue())
	assert.Equal(t, "AKIA", queue.SQS.AccessKeyID)
	assert.True(t, isFIFO(queue.SQS.QueueURL))
}

func TestLoadConfigsJSON(t *testing.T) {
	path := writeConfig(t, "publishers.json", `{"publishers":[{"id":"ps","type":"pubsub","pubsub":{"project_id":"p","topic":"stats"}}]}`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "stats", cfgs[0].PubSub.Topic)
}

func TestLoadConfigsRejects(t *testing.T) {
	tests := map[string]string{
		"duplicates": `
publishers:
  - id: a
    type: http
    http: {url: https://example.com}
  - id: a
    type: http
    http: {url: https://example.com}
`,
		"empty list":   `publishers: []`,
		"unknown type": "publishers:\n  - id: k\n    type: kafka\n",
		"bad yaml":     "publishers: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigs(writeConfig(t, "publishers.yaml", raw))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfigs(" ")
	assert.Error(t, err)
	_, err = LoadConfigs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidatePublisherConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   PublisherConfig
		field string
	}{
		{"missing http", PublisherConfig{ID: "h1", Type: TypeHTTP}, "http"},
		{"non http url", PublisherConfig{ID: "h1", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "ftp://example.com", Method: "POST"}}, "http.url"},
		{"unsupported method", PublisherConfig{ID: "h1", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com", Method: "GET"}}, "http.method"},
		{"missing sqs region", PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://sqs.eu-central-1.amazonaws.com/1/q"}}, "sqs.region"},
		{"half credentials", PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL:       "https://sqs.eu-central-1.amazonaws.com/1/q",
			Region:         "eu-central-1",
			AWSCredentials: AWSCredentials{AccessKeyID: "AKIA"},
		}}, "secret_access_key"},
		{"missing sns topic", PublisherConfig{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "eu-west-1"}}, "sns.topic_arn"},
		{"sns topic is not an arn", PublisherConfig{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "stats", Region: "eu-west-1"}}, "sns.topic_arn"},
		{"missing pubsub topic", PublisherConfig{ID: "p", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "x"}}, "pubsub.topic"},
		{"missing id", PublisherConfig{Type: TypeHTTP}, "id"},
		{"unknown type", PublisherConfig{ID: "k", Type: "kafka"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublisherConfig(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	assert.NoError(t, validatePublisherConfig(PublisherConfig{
		ID:   "s",
		Type: TypeSNS,
		SNS:  &SNSPublisherConfig{TopicARN: "arn:aws:sns:eu-west-1:1:stats.fifo", Region: "eu-west-1"},
	}))
}
