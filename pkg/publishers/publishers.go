package publishers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig declares one stats sink. Exactly the section matching Type
// is required.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id" validate:"required"`
	Type    string                 `json:"type" yaml:"type" validate:"oneof=sqs sns pubsub http"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs" validate:"required_if=Type sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns" validate:"required_if=Type sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub" validate:"required_if=Type pubsub"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http" validate:"required_if=Type http"`
}

// AWSCredentials are optional static credentials; the default AWS chain is used when empty.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key" validate:"required_with=AccessKeyID"`
}

// SQSPublisherConfig points at a standard or FIFO (".fifo") queue.
type SQSPublisherConfig struct {
	QueueURL       string `json:"uri" yaml:"uri" validate:"required,url"`
	Region         string `json:"region" yaml:"region" validate:"required"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// SNSPublisherConfig points at a standard or FIFO (".fifo") topic.
type SNSPublisherConfig struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn" validate:"required,startswith=arn:"`
	Region         string `json:"region" yaml:"region" validate:"required"`
	AWSCredentials `json:",inline" yaml:",inline"`
}

// PubSubPublisherConfig holds Google Cloud Pub/Sub settings.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id" validate:"required"`
	Topic           string `json:"topic" yaml:"topic" validate:"required"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig holds webhook settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url" validate:"required,http_url"`
	Method         string            `json:"method" yaml:"method" validate:"oneof=POST PUT PATCH"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadConfigs reads the publisher list from a YAML or JSON file. Entries are
// normalized and validated; disabled entries are kept and skipped by Build.
func LoadConfigs(path string) ([]PublisherConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file configFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(file.Publishers))
	cfgs := make([]PublisherConfig, 0, len(file.Publishers))
	for i, cfg := range file.Publishers {
		cfg = normalizePublisherConfig(cfg)
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func normalizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	switch {
	case cfg.Type == TypeSQS && cfg.SQS != nil:
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		cfg.SQS = &c
	case cfg.Type == TypeSNS && cfg.SNS != nil:
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		cfg.SNS = &c
	case cfg.Type == TypeHTTP && cfg.HTTP != nil:
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds == 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		c.Headers = cleanHeaders(c.Headers)
		cfg.HTTP = &c
	}
	return cfg
}

// cleanHeaders drops entries with an empty name or value.
func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validatePublisherConfig(cfg PublisherConfig) error {
	err := configValidator.Struct(cfg)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "PublisherConfig.")
		if fe.Param() != "" {
			return fmt.Errorf("publisher %q: %s fails %s=%s", cfg.ID, field, fe.Tag(), fe.Param())
		}
		return fmt.Errorf("publisher %q: %s fails %s", cfg.ID, field, fe.Tag())
	}
	return err
}
