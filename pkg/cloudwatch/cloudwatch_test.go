package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	aws_cloudwatch "github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	cloudwatchiface.CloudWatchAPI

	calls []*aws_cloudwatch.PutMetricDataInput
	err   error
}

func (m *mockCloudWatch) PutMetricDataWithContext(ctx aws.Context, input *aws_cloudwatch.PutMetricDataInput, opts ...request.Option) (*aws_cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, input)
	if m.err != nil {
		return nil, m.err
	}
	return &aws_cloudwatch.PutMetricDataOutput{}, nil
}

func makeData(n int) []*aws_cloudwatch.MetricDatum {
	data := make([]*aws_cloudwatch.MetricDatum, 0, n)
	for i := 0; i < n; i++ {
		data = append(data, &aws_cloudwatch.MetricDatum{
			MetricName: aws.String(fmt.Sprintf("metric-%d", i)),
			Value:      aws.Float64(float64(i)),
		})
	}
	return data
}

func TestNewEmptyNamespace(t *testing.T) {
	_, err := NewWithClient(&mockCloudWatch{}, "")
	assert.ErrorIs(t, err, ErrEmptyNamespace)
}

func TestPublishChunking(t *testing.T) {
	mock := &mockCloudWatch{}
	p, err := NewWithClient(mock, "UsageMetrics")
	require.NoError(t, err)

	// 45 data -> 3 calls of 20, 20, 5
	err = p.Publish(context.Background(), makeData(45))
	require.NoError(t, err)
	require.Len(t, mock.calls, 3)
	assert.Len(t, mock.calls[0].MetricData, 20)
	assert.Len(t, mock.calls[1].MetricData, 20)
	assert.Len(t, mock.calls[2].MetricData, 5)

	for _, call := range mock.calls {
		assert.Equal(t, "UsageMetrics", aws.StringValue(call.Namespace))
	}
}

func TestPublishSingleBatch(t *testing.T) {
	mock := &mockCloudWatch{}
	p, err := NewWithClient(mock, "UsageMetrics")
	require.NoError(t, err)

	err = p.Publish(context.Background(), makeData(6))
	require.NoError(t, err)
	require.Len(t, mock.calls, 1)
	assert.Len(t, mock.calls[0].MetricData, 6)
}

func TestPublishEmpty(t *testing.T) {
	mock := &mockCloudWatch{}
	p, err := NewWithClient(mock, "UsageMetrics")
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), nil))
	assert.Empty(t, mock.calls)
}

func TestPublishError(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("throttled")}
	p, err := NewWithClient(mock, "UsageMetrics")
	require.NoError(t, err)

	err = p.Publish(context.Background(), makeData(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
