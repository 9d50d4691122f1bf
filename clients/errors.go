package clients

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/vitwit/tonpay/types"
)

// apiError is the body the payment service sends along with a non-2xx status.
type apiError struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// errMalformedResponse is reported when a 2xx reply does not decode into a payment envelope.
const errMalformedResponse = "malformed payment service response"

// checkResponse turns a transport failure, a non-2xx status, an undecodable body or a failed
// envelope into a service error.
func checkResponse(op string, resp *resty.Response, err error, body *types.PaymentResponse, errBody *apiError) error {
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		return types.NewServiceError(0, fmt.Sprintf("%s: request failed: %v", op, err), err)
	}

	if resp.IsError() {
		msg := errBody.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		if len(errBody.Errors) > 0 {
			msg = fmt.Sprintf("%s: %v", msg, errBody.Errors)
		}
		return types.NewServiceError(resp.StatusCode(), msg, nil)
	}

	// resty returns the response alongside the decode error
	if err != nil {
		return types.NewServiceError(resp.StatusCode(), errMalformedResponse, err)
	}

	if body.Status != 0 && (body.Status < 200 || body.Status > 299) {
		return types.NewServiceError(body.Status, body.Message, nil)
	}

	if body.Payload.PaymentID == "" {
		return types.NewServiceError(resp.StatusCode(), errMalformedResponse, nil)
	}

	return nil
}
