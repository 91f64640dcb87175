package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// Form is an ordered set of form fields. Order is kept for multipart bodies
// so requests are reproducible in tests and logs.
type Form struct {
	keys   []string
	values url.Values
}

// NewForm creates a form whose first field is action.
func NewForm(action string) *Form {
	f := &Form{values: url.Values{}}
	return f.Set("action", action)
}

// Set sets a field, replacing any earlier value.
func (f *Form) Set(key, value string) *Form {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values.Set(key, value)
	return f
}

// SetBool sets a field to "true" or "false".
func (f *Form) SetBool(key string, v bool) *Form {
	return f.Set(key, strconv.FormatBool(v))
}

// SetJSON sets a field to the JSON encoding of v.
func (f *Form) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapParse("json", key, err)
	}
	f.Set(key, string(data))
	return nil
}

// Get returns a field value.
func (f *Form) Get(key string) string {
	return f.values.Get(key)
}

// Action returns the action field.
func (f *Form) Action() string {
	return f.values.Get("action")
}

// Values returns a copy of the fields.
func (f *Form) Values() url.Values {
	out := url.Values{}
	for k, v := range f.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Encode renders the form urlencoded.
func (f *Form) Encode() string {
	return f.values.Encode()
}

// Multipart renders the form as multipart/form-data.
func (f *Form) Multipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range f.keys {
		if err := w.WriteField(k, f.values.Get(k)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// DecodeResponse decodes a JSON response into the target structure. A
// non-2xx status becomes an APIError carrying the body text; an undecodable
// body becomes a ParseError.
func DecodeResponse(resp *http.Response, action string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("action", action).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(bytes.TrimSpace(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return errors.NewAPIError(action, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", action+" response", err)
	}

	return nil
}
