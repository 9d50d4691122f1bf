package clients

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/metrics"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
)

var _ PaymentService = (*PaymentClient)(nil)

// PaymentClient talks to the payment service over HTTP. It performs no retries.
type PaymentClient struct {
	http    *resty.Client
	logger  logger.Logger
	metrics metrics.Recorder
}

// ClientOption configures a PaymentClient.
type ClientOption func(*PaymentClient)

func WithLogger(l logger.Logger) ClientOption {
	return func(c *PaymentClient) {
		c.logger = logger.OrNoop(l)
	}
}

func WithMetrics(r metrics.Recorder) ClientOption {
	return func(c *PaymentClient) {
		c.metrics = metrics.OrNoop(r)
	}
}

// WithRestyClient replaces the underlying HTTP client. Base URL, timeout and auth are still applied.
func WithRestyClient(rc *resty.Client) ClientOption {
	return func(c *PaymentClient) {
		c.http = rc
	}
}

// NewPaymentClient creates a client for the payment service at apiURL.
func NewPaymentClient(apiURL, apiKey string, timeout time.Duration, opts ...ClientOption) (*PaymentClient, error) {
	if apiURL == "" {
		return nil, &types.Error{Code: types.CodeConfigError, Message: "api url is required"}
	}
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}

	c := &PaymentClient{
		http:    resty.New(),
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(logger.NewPrintfLogger(c.logger, "payment_client"))
	if apiKey != "" {
		c.http.SetAuthToken(apiKey)
	}

	return c, nil
}

// NewPaymentClientFromConfig creates a client from the SDK configuration.
func NewPaymentClientFromConfig(cfg types.Config, opts ...ClientOption) (*PaymentClient, error) {
	return NewPaymentClient(cfg.APIURL, cfg.APIKey, cfg.Timeout, opts...)
}

// CreatePayment asks the service to allocate a new payment for the requested amount.
func (c *PaymentClient) CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.PaymentResponse, error) {
	if err := utils.ValidateStruct(&req, types.CodeInvalidAmount); err != nil {
		return nil, err
	}
	if _, err := utils.ValidateAmount(req.Amount); err != nil {
		return nil, &types.Error{Code: types.CodeInvalidAmount, Message: err.Error(), Err: err}
	}

	return c.post(ctx, opCreatePayment, CreatePaymentPath, req, map[string]any{"amount": req.Amount})
}

// GetPayment fetches the current state of a payment.
func (c *PaymentClient) GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error) {
	req := types.CheckPaymentRequest{PaymentID: paymentID}
	if err := utils.ValidateStruct(&req, types.CodeInvalidPayment); err != nil {
		return nil, err
	}

	return c.post(ctx, opGetPayment, CheckPaymentPath, req, map[string]any{"payment_id": paymentID})
}

func (c *PaymentClient) post(ctx context.Context, op, path string, body any, fields map[string]any) (*types.PaymentResponse, error) {
	var (
		result  types.PaymentResponse
		errBody apiError
	)

	start := time.Now()
	requestID := uuid.NewString()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetBody(body).
		SetResult(&result).
		SetError(&errBody).
		ForceContentType("application/json").
		Post(path)

	fields["request_id"] = requestID
	fields["operation"] = op

	if cerr := checkResponse(op, resp, err, &result, &errBody); cerr != nil {
		c.record(op, "error", start)
		c.logger.Error("payment service request failed", logger.Err(cerr, fields))
		return nil, cerr
	}

	c.record(op, "ok", start)
	fields["status"] = result.Payload.CurrentStatus.String()
	c.logger.Debug("payment service request succeeded", fields)

	return &result, nil
}

func (c *PaymentClient) record(op, outcome string, start time.Time) {
	labels := map[string]string{"operation": op, "outcome": outcome}
	c.metrics.IncCounter(metrics.RequestTotal, labels)
	c.metrics.ObserveLatency(metrics.RequestLatency, time.Since(start), labels)
}
