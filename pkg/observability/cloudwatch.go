package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const maxDatumsPerCall = 20

// CloudWatchAPI is the subset of the CloudWatch client the recorder uses.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder buffers metric data and sends it on Flush. Lambda
// handlers flush once per invocation.
type CloudWatchRecorder struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger

	mu     sync.Mutex
	datums []cwtypes.MetricDatum
}

// NewCloudWatchRecorder creates a recorder publishing under namespace.
func NewCloudWatchRecorder(client CloudWatchAPI, namespace string, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{client: client, namespace: namespace, logger: logger}
}

func (r *CloudWatchRecorder) add(name string, unit cwtypes.StandardUnit, value float64, dims ...cwtypes.Dimension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datums = append(r.datums, cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dims,
		Unit:       unit,
		Value:      aws.Float64(value),
		Timestamp:  aws.Time(time.Now()),
	})
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func (r *CloudWatchRecorder) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	r.add("HTTPRequests", cwtypes.StandardUnitCount, 1,
		dim("Method", method), dim("Route", route), dim("Status", strconv.Itoa(status)))
	r.add("HTTPLatency", cwtypes.StandardUnitMilliseconds, float64(d.Milliseconds()),
		dim("Method", method), dim("Route", route))
}

func (r *CloudWatchRecorder) RecordAnalysisCall(outcome string, d time.Duration) {
	r.add("AnalysisCalls", cwtypes.StandardUnitCount, 1, dim("Outcome", outcome))
	if outcome != OutcomeRejected {
		r.add("AnalysisLatency", cwtypes.StandardUnitMilliseconds, float64(d.Milliseconds()))
	}
}

func (r *CloudWatchRecorder) RecordConflictRetry(operation string) {
	r.add("ConflictRetries", cwtypes.StandardUnitCount, 1, dim("Operation", operation))
}

// Pending returns the number of buffered data points.
func (r *CloudWatchRecorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.datums)
}

// Flush sends buffered data. Data from a failed call is dropped and the
// error returned.
func (r *CloudWatchRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	datums := r.datums
	r.datums = nil
	r.mu.Unlock()

	for i := 0; i < len(datums); i += maxDatumsPerCall {
		end := i + maxDatumsPerCall
		if end > len(datums) {
			end = len(datums)
		}
		_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(r.namespace),
			MetricData: datums[i:end],
		})
		if err != nil {
			r.logger.Warn("failed to publish metrics", zap.Error(err), zap.Int("dropped", len(datums)-i))
			return err
		}
	}
	return nil
}
