package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/googleapi"
)

// Invoker wraps a Client with the contract the pipeline stages rely on:
// every response is validated against the stage-declared JSON Schema before
// any business code sees it, and failures are classified into ClientError
// kinds. On a malformed response the same prompt is retried up to
// MalformedRetries times with linear backoff before the error surfaces.
type Invoker struct {
	client           Client
	malformedRetries int
	backoff          time.Duration
	callTimeout      time.Duration
}

// InvokerOptions configures retry and deadline policy. Zero values fall back
// to defaults (2 retries, 500ms backoff, 60s per-call timeout).
type InvokerOptions struct {
	MalformedRetries int
	Backoff          time.Duration
	CallTimeout      time.Duration
}

// NewInvoker creates an Invoker around an existing client.
func NewInvoker(client Client, opts InvokerOptions) *Invoker {
	if opts.MalformedRetries <= 0 {
		opts.MalformedRetries = 2
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	return &Invoker{
		client:           client,
		malformedRetries: opts.MalformedRetries,
		backoff:          opts.Backoff,
		callTimeout:      opts.CallTimeout,
	}
}

// Invoke sends the prompt to the generation service and returns the raw JSON
// document once it validates against schema. The returned error, when
// non-nil, is always a *ClientError.
func (iv *Invoker) Invoke(ctx context.Context, prompt, schema string, tier ModelTier) (json.RawMessage, error) {
	var lastShapeErr error

	for attempt := 0; attempt <= iv.malformedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &ClientError{Kind: ErrTimeout, Message: "cancelled while retrying", Cause: ctx.Err()}
			case <-time.After(time.Duration(attempt) * iv.backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, iv.callTimeout)
		text, err := iv.client.GenerateJSON(callCtx, prompt, tier)
		cancel()
		if err != nil {
			return nil, classifyTransportError(err)
		}

		doc := CleanJSONBlock(text)
		if err := validateShape(schema, doc); err != nil {
			lastShapeErr = err
			continue
		}
		return json.RawMessage(doc), nil
	}

	return nil, &ClientError{
		Kind:    ErrMalformedResponse,
		Message: fmt.Sprintf("response did not match expected shape after %d retries", iv.malformedRetries),
		Cause:   lastShapeErr,
	}
}

// validateShape checks a JSON document against a JSON Schema string.
func validateShape(schema, doc string) error {
	if !json.Valid([]byte(doc)) {
		return fmt.Errorf("response is not valid JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("schema violations:")
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		sb.WriteString(fmt.Sprintf(" %s: %s;", field, desc.Description()))
	}
	return errors.New(sb.String())
}

// classifyTransportError maps provider errors onto ClientError kinds.
func classifyTransportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClientError{Kind: ErrTimeout, Message: "call did not complete in time", Cause: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ClientError{Kind: ErrRateLimited, Message: "quota exceeded", Cause: err}
		case apiErr.Code >= 500:
			return &ClientError{Kind: ErrServiceUnavailable, Message: "server error", Cause: err}
		}
	}

	return &ClientError{Kind: ErrServiceUnavailable, Message: "call failed", Cause: err}
}
