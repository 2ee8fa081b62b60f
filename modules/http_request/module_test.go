package http_request

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		value   cty.Value
		want    *Input
		wantErr string
	}{
		{
			name:  "plain url",
			value: cty.StringVal("http://example.test"),
			want:  &Input{URL: "http://example.test", Method: http.MethodGet},
		},
		{
			name: "object with every attribute",
			value: cty.ObjectVal(map[string]cty.Value{
				"url":           cty.StringVal("http://example.test/x"),
				"method":        cty.StringVal("POST"),
				"expect_status": cty.NumberIntVal(201),
			}),
			want: &Input{URL: "http://example.test/x", Method: "POST", ExpectStatus: 201},
		},
		{
			name:    "object without url",
			value:   cty.ObjectVal(map[string]cty.Value{"method": cty.StringVal("GET")}),
			wantErr: "value must be a URL or an object with a url attribute",
		},
		{
			name:    "null",
			value:   cty.NullVal(cty.String),
			wantErr: "value must be a known URL or object",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseInput(tc.value)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/created":
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	testCases := []struct {
		name    string
		input   Input
		wantOut string
		wantErr string
	}{
		{
			name:    "success",
			input:   Input{URL: server.URL + "/ok", Method: http.MethodGet},
			wantOut: "GET " + server.URL + "/ok -> 200 OK\n",
		},
		{
			name:    "expected status",
			input:   Input{URL: server.URL + "/created", Method: http.MethodPost, ExpectStatus: 201},
			wantOut: "POST " + server.URL + "/created -> 201 Created\n",
		},
		{
			name:    "not found fails",
			input:   Input{URL: server.URL + "/missing", Method: http.MethodGet},
			wantOut: "GET " + server.URL + "/missing -> 404 Not Found\n",
			wantErr: "unexpected status 404",
		},
		{
			name:    "status mismatch fails",
			input:   Input{URL: server.URL + "/ok", Method: http.MethodGet, ExpectStatus: 204},
			wantOut: "GET " + server.URL + "/ok -> 200 OK\n",
			wantErr: "unexpected status 200, want 204",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			err := Request(context.Background(), server.Client(), &tc.input, &out)

			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantOut, out.String())
		})
	}
}

func TestNewRequestTask_RunsAgainstServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	m := &Module{Client: server.Client()}
	fn, err := m.NewRequestTask(cty.StringVal(server.URL))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, fn(context.Background(), &out))
	assert.Equal(t, "GET "+server.URL+" -> 200 OK\n", out.String())
}
