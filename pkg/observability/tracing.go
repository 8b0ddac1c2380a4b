package observability

import (
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// InstrumentAWS records an X-Ray subsegment for every AWS SDK call made with
// clients built from cfg.
func InstrumentAWS(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}

// TraceHTTPClient wraps client so outbound requests are traced.
func TraceHTTPClient(client *http.Client) *http.Client {
	return xray.Client(client)
}
