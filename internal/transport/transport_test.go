package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger/pkg/errors"
)

func TestAuthenticators(t *testing.T) {
	tests := []struct {
		scheme string
		check  func(t *testing.T, req *http.Request)
	}{
		{"", func(t *testing.T, req *http.Request) {
			assert.Empty(t, req.Header)
			assert.Equal(t, "sheet=Documents", req.URL.RawQuery)
		}},
		{"bearer", func(t *testing.T, req *http.Request) {
			assert.Equal(t, "Bearer k", req.Header.Get("Authorization"))
		}},
		{"header:X-Api-Key", func(t *testing.T, req *http.Request) {
			assert.Equal(t, "k", req.Header.Get("X-Api-Key"))
		}},
		{"query:token", func(t *testing.T, req *http.Request) {
			assert.Equal(t, "k", req.URL.Query().Get("token"))
			assert.Equal(t, "Documents", req.URL.Query().Get("sheet"))
		}},
		{"key", func(t *testing.T, req *http.Request) {
			assert.Equal(t, "k", req.URL.Query().Get("key"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			u, _ := url.Parse("https://script.test/exec?sheet=Documents")
			req := &http.Request{URL: u, Header: make(http.Header)}
			NewAuthenticator(tt.scheme).Apply(req, "k")
			tt.check(t, req)
		})
	}
}

func TestFormOrderAndEncoding(t *testing.T) {
	f := NewForm("markDeleted").
		Set("sheetName", "Documents").
		Set("serialNo", "PN-001").
		SetBool("needsRenewal", true)
	require.NoError(t, f.SetJSON("rowData", []string{"a", "b"}))
	f.Set("serialNo", "PN-002")

	assert.Equal(t, "markDeleted", f.Action())
	assert.Equal(t, []string{"action", "sheetName", "serialNo", "needsRenewal", "rowData"}, f.keys)
	assert.Equal(t, "PN-002", f.Get("serialNo"))
	assert.Equal(t, `["a","b"]`, f.Get("rowData"))
	assert.Contains(t, f.Encode(), "sheetName=Documents")

	body, contentType, err := f.Multipart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	raw, _ := io.ReadAll(body)
	assert.Less(t, strings.Index(string(raw), `name="action"`), strings.Index(string(raw), `name="rowData"`))
}

func TestClientRequests(t *testing.T) {
	var got *http.Request
	var gotBody url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		if r.Method == http.MethodPost {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				require.NoError(t, r.ParseMultipartForm(1<<20))
				gotBody = r.MultipartForm.Value
			} else {
				require.NoError(t, r.ParseForm())
				gotBody = r.PostForm
			}
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := New(&QueryAuth{Param: "key"}, WithAPIKey("secret"), WithHTTPClient(srv.Client()))
	ctx := context.Background()

	resp, err := c.Get(ctx, srv.URL+"/exec", url.Values{"sheet": {"Documents"}, "action": {"fetch"}})
	require.NoError(t, err)
	var env struct{ Success bool }
	require.NoError(t, DecodeResponse(resp, "fetch", &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Documents", got.URL.Query().Get("sheet"))
	assert.Equal(t, "secret", got.URL.Query().Get("key"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))

	resp, err = c.PostForm(ctx, srv.URL, NewForm("approve").Set("serialNo", "PN-001"))
	require.NoError(t, err)
	require.NoError(t, DecodeResponse(resp, "approve", &env))
	assert.Equal(t, "approve", gotBody.Get("action"))
	assert.Equal(t, "PN-001", gotBody.Get("serialNo"))

	resp, err = c.PostMultipart(ctx, srv.URL, NewForm("insert").Set("sheetName", "Documents"))
	require.NoError(t, err)
	require.NoError(t, DecodeResponse(resp, "insert", &env))
	assert.Equal(t, []string{"insert"}, gotBody["action"])
	assert.Equal(t, []string{"Documents"}, gotBody["sheetName"])
}

func TestDecodeResponseErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"server error", 503, "down", func(t *testing.T, err error) {
			assert.True(t, errors.IsServiceUnavailable(err))
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "down", apiErr.Message)
			assert.Equal(t, "fetch", apiErr.Action)
		}},
		{"rate limited", 429, "", func(t *testing.T, err error) {
			assert.True(t, errors.IsRateLimited(err))
		}},
		{"not found", 404, "", func(t *testing.T, err error) {
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "Not Found", apiErr.Message)
		}},
		{"malformed", 200, "<html>", func(t *testing.T, err error) {
			var parseErr *errors.ParseError
			require.ErrorAs(t, err, &parseErr)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			var target map[string]any
			err := DecodeResponse(resp, "fetch", &target)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(nil).Get(context.Background(), addr, nil)
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailable(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(nil).Get(ctx, "http://127.0.0.1:1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
