// Package sheets is the typed client for the spreadsheet-backed script
// service. Reads fetch one sheet as positional rows and map them through the
// documents layouts; writes post an action form and check the success
// envelope. Nothing is retried.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/internal/transport"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// Client talks to one script endpoint.
type Client struct {
	endpoint string
	http     *transport.Client
	logger   *zerolog.Logger
	loc      *time.Location
	folderID string
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the HTTP transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.http = t
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the zone used for sheet dates without an offset.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithUploadFolder sets the Drive folder uploads are stored in.
func WithUploadFolder(id string) Option {
	return func(c *Client) {
		c.folderID = id
	}
}

// WithClock replaces the clock used for write timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client for endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.NewConfigError("sheets", "endpoint is required", nil)
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, errors.NewConfigError("sheets", "endpoint is not a valid URL", err)
	}
	c := &Client{
		endpoint: endpoint,
		http:     transport.New(nil),
		logger:   logging.Default(),
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the script URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Location returns the zone used for dates without an offset.
func (c *Client) Location() *time.Location {
	return c.loc
}

// envelope is the response shape shared by every action.
type envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	Error       string          `json:"error,omitempty"`
	Message     string          `json:"message,omitempty"`
	FileURL     string          `json:"fileUrl,omitempty"`
	NewSerialNo string          `json:"newSerialNo,omitempty"`
	NextSerials json.RawMessage `json:"nextSerials,omitempty"`
}

// failure turns a success:false envelope into a ServiceError.
func (e *envelope) failure(action string) error {
	if e.Success {
		return nil
	}
	msg := e.Error
	if msg == "" {
		msg = e.Message
	}
	return errors.NewServiceError(action, msg)
}

// Fetch reads every row of sheet, dropping the header row. Cells are
// rendered as strings: numbers in their shortest form, booleans as TRUE or
// FALSE and nulls as blanks.
func (c *Client) Fetch(ctx context.Context, sheet string) ([][]string, error) {
	ctx = logging.WithSheet(ctx, sheet)
	start := time.Now()

	env, err := c.get(ctx, "fetch", url.Values{"sheet": {sheet}, "action": {"fetch"}})
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(env.Data)
	if err != nil {
		return nil, errors.WrapParse("json", sheet+" rows", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	logging.FromContext(ctx).Debug().
		Int("records", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Fetched sheet")
	return rows, nil
}

func (c *Client) get(ctx context.Context, action string, query url.Values) (*envelope, error) {
	resp, err := c.http.Get(ctx, c.endpoint, query)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := transport.DecodeResponse(resp, action, &env); err != nil {
		return nil, err
	}
	if err := env.failure(action); err != nil {
		return nil, err
	}
	return &env, nil
}

// post sends form urlencoded, or multipart when multipart is set.
func (c *Client) post(ctx context.Context, form *transport.Form, multipart bool) (*envelope, error) {
	action := form.Action()
	log := logging.FromContext(logging.WithAction(ctx, action))
	start := time.Now()

	post := c.http.PostForm
	if multipart {
		post = c.http.PostMultipart
	}
	resp, err := post(ctx, c.endpoint, form)
	if err != nil {
		log.Warn().Err(err).Msg("Write failed")
		return nil, err
	}
	var env envelope
	if err := transport.DecodeResponse(resp, action, &env); err != nil {
		log.Warn().Err(err).Msg("Write failed")
		return nil, err
	}
	if err := env.failure(action); err != nil {
		log.Warn().Err(err).Msg("Service rejected write")
		return nil, err
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Write accepted")
	return &env, nil
}

// decodeRows reads a JSON array of arrays with lenient cell types.
func decodeRows(raw json.RawMessage) ([][]string, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return [][]string{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var cells [][]any
	if err := dec.Decode(&cells); err != nil {
		return nil, err
	}
	rows := make([][]string, len(cells))
	for i, row := range cells {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = cellString(v)
		}
	}
	return rows, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
