package httpclient

import (
	"context"
	"time"
	"trading-signal-bot/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
	log    *logger.Logger
}

func New(log *logger.Logger, baseURL string, timeout time.Duration, bearerToken string) HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if bearerToken != "" {
		client.SetAuthToken(bearerToken)
	}

	return &RestyClient{client: client, log: log}
}

// Get sends a GET request with optional query params.
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.client.R().SetContext(ctx)
	if result != nil {
		req.SetResult(result)
	}
	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}
	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	return rc.toBaseResponse(ctx, endpoint, resp), err
}

func (rc *RestyClient) toBaseResponse(ctx context.Context, endpoint string, resp *resty.Response) *BaseResponse {
	if resp == nil {
		return &BaseResponse{}
	}
	rc.log.DebugContext(ctx, "HTTP request completed",
		logger.StringField("endpoint", endpoint),
		logger.IntField("status_code", resp.StatusCode()),
		logger.DurationField("elapsed", resp.Time()),
	)
	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}
}
