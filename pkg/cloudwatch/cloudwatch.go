// Package cloudwatch publishes metric data to AWS CloudWatch.
package cloudwatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"github.com/damionirving/gpumon-aws/pkg/log"
)

// MaxDataPerCall is the PutMetricData API limit on the number of metric
// data in a single request.
// ref. https://docs.aws.amazon.com/AmazonCloudWatch/latest/APIReference/API_PutMetricData.html
const MaxDataPerCall = 20

var ErrEmptyNamespace = errors.New("namespace is empty")

// Publisher submits batches of metric data under a fixed namespace.
type Publisher interface {
	// Publish submits all the given data, splitting the batch into
	// API-sized chunks.
	Publish(ctx context.Context, data []*cloudwatch.MetricDatum) error
}

var _ Publisher = &publisher{}

type publisher struct {
	cli       cloudwatchiface.CloudWatchAPI
	namespace string
}

// New creates a CloudWatch publisher for the given region and namespace.
// Credentials are resolved the usual SDK way (env, shared config,
// instance profile).
func New(region string, namespace string) (Publisher, error) {
	if namespace == "" {
		return nil, ErrEmptyNamespace
	}

	ss, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &publisher{
		cli:       cloudwatch.New(ss),
		namespace: namespace,
	}, nil
}

// NewWithClient creates a publisher with an existing CloudWatch client.
func NewWithClient(cli cloudwatchiface.CloudWatchAPI, namespace string) (Publisher, error) {
	if namespace == "" {
		return nil, ErrEmptyNamespace
	}
	return &publisher{
		cli:       cli,
		namespace: namespace,
	}, nil
}

func (p *publisher) Publish(ctx context.Context, data []*cloudwatch.MetricDatum) error {
	for start := 0; start < len(data); start += MaxDataPerCall {
		end := start + MaxDataPerCall
		if end > len(data) {
			end = len(data)
		}

		_, err := p.cli.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: data[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to put metric data: %w", err)
		}

		log.Logger.Debugw("published metric data", "namespace", p.namespace, "data", end-start)
	}

	return nil
}
