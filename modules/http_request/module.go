// Package http_request provides the "http_request" taskfile action, which
// performs one HTTP request and fails on an unexpected status.
package http_request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/taskrun/internal/ctxlog"
	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is used for every request. http.DefaultClient with a timeout
	// is used when nil.
	Client *http.Client
}

// Input is the decoded action argument.
type Input struct {
	URL          string
	Method       string
	ExpectStatus int
}

var inputType = cty.ObjectWithOptionalAttrs(map[string]cty.Type{
	"url":           cty.String,
	"method":        cty.String,
	"expect_status": cty.Number,
}, []string{"method", "expect_status"})

// ParseInput accepts either a URL string or an object with "url" and
// optional "method" and "expect_status" attributes.
func ParseInput(value cty.Value) (*Input, error) {
	if value.IsNull() || !value.IsWhollyKnown() {
		return nil, errors.New("value must be a known URL or object")
	}

	if value.Type() == cty.String {
		return &Input{URL: value.AsString(), Method: http.MethodGet}, nil
	}

	obj, err := convert.Convert(value, inputType)
	if err != nil {
		return nil, fmt.Errorf("value must be a URL or an object with a url attribute: %w", err)
	}

	in := &Input{Method: http.MethodGet}
	if err := gocty.FromCtyValue(obj.GetAttr("url"), &in.URL); err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	if m := obj.GetAttr("method"); !m.IsNull() {
		in.Method = m.AsString()
	}
	if s := obj.GetAttr("expect_status"); !s.IsNull() {
		if err := gocty.FromCtyValue(s, &in.ExpectStatus); err != nil {
			return nil, fmt.Errorf("expect_status: %w", err)
		}
	}
	if in.URL == "" {
		return nil, errors.New("url must not be empty")
	}
	return in, nil
}

// NewRequestTask builds the task body for one request.
func (m *Module) NewRequestTask(value cty.Value) (task.Func, error) {
	input, err := ParseInput(value)
	if err != nil {
		return nil, err
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return func(ctx context.Context, out io.Writer) error {
		return Request(ctx, client, input, out)
	}, nil
}

// Request performs the request and writes a one-line summary to out.
func Request(ctx context.Context, client *http.Client, input *Input, out io.Writer) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Making HTTP request", "method", input.Method, "url", input.URL)

	req, err := http.NewRequestWithContext(ctx, input.Method, input.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("Received HTTP response", "status", resp.Status)
	fmt.Fprintf(out, "%s %s -> %s\n", input.Method, input.URL, resp.Status)

	if input.ExpectStatus != 0 {
		if resp.StatusCode != input.ExpectStatus {
			return fmt.Errorf("unexpected status %d, want %d", resp.StatusCode, input.ExpectStatus)
		}
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Register registers the action with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("http_request", m.NewRequestTask)
}
