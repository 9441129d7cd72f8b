package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves AWS settings for region, preferring static credentials when both parts are set.
func loadAWSConfig(ctx context.Context, region string, creds AWSCredentials) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// isFIFO reports whether a queue URL or topic ARN names a FIFO resource.
func isFIFO(name string) bool {
	return strings.HasSuffix(name, ".fifo")
}

// awsDataType maps an attribute to the SQS/SNS attribute data type.
func awsDataType(a Attribute) string {
	if a.Numeric {
		return "Number"
	}
	return "String"
}

// fifoFields returns the message group and deduplication ids for FIFO
// resources. One bot's snapshots share a group so they stay ordered, and a
// repeated snapshot inside the broker's dedupe window is dropped.
func fifoFields(evt Event) (group, dedupe string) {
	group = evt.BotID
	if group == "" {
		group = "boticord-stats"
	}
	return group, evt.Key()
}
