package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"time"
)

const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Client is a synchronous client for the subset of the Cloudflare v4 API used to manage tunnels and DNS records.
type Client struct {
	http    *retryablehttp.Client
	token   string
	baseURL string
}

type Options struct {
	BaseURL string
	// RetryMax is the number of retries after the first attempt. Zero means a single attempt.
	RetryMax int
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

func NewClient(token string, options Options) *Client {
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = options.RetryMax
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	httpClient.Logger = leveledLogger{logger}
	httpClient.HTTPClient.Timeout = options.Timeout
	httpClient.HTTPClient.Transport = loggingTransport{
		next:   httpClient.HTTPClient.Transport,
		logger: logger,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		http:    httpClient,
		token:   token,
		baseURL: baseURL,
	}
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

type response[T any] struct {
	Success    bool            `json:"success"`
	Errors     []responseError `json:"errors"`
	Result     T               `json:"result"`
	ResultInfo *resultInfo     `json:"result_info,omitempty"`
}

// do sends a JSON request and decodes the {success, errors, result} envelope.
func do[T any](ctx context.Context, c *Client, method, path string, body interface{}) (*response[T], error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	var envelope response[T]
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&envelope)

	if resp.StatusCode >= 400 || (decodeErr == nil && !envelope.Success) {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		for _, e := range envelope.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, errors.Wrapf(decodeErr, "decode response for %s %s", method, path)
	}

	return &envelope, nil
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger logrus.FieldLogger
}

func (l leveledLogger) fields(keysAndValues []interface{}) logrus.FieldLogger {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return l.logger.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
