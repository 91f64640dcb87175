package sheets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger/internal/transport"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
	"github.com/agentstation/docledger/pkg/serials"
)

// fakeService records requests and answers with canned bodies.
type fakeService struct {
	mu       sync.Mutex
	sheets   map[string]string
	reply    map[string]string
	status   int
	requests []recorded
}

type recorded struct {
	method      string
	query       url.Values
	form        url.Values
	contentType string
}

func newFakeService(t *testing.T) (*fakeService, *Client) {
	t.Helper()
	f := &fakeService{sheets: map[string]string{}, reply: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/exec",
		WithTransport(transport.New(nil, transport.WithHTTPClient(srv.Client()))),
		WithLogger(logging.NewNopLogger()),
		WithLocation(time.UTC),
		WithUploadFolder("folder-1"),
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	return f, c
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := recorded{method: r.Method, query: r.URL.Query(), contentType: r.Header.Get("Content-Type")}
	if r.Method == http.MethodPost {
		if strings.HasPrefix(rec.contentType, "multipart/") {
			_ = r.ParseMultipartForm(10 << 20)
			rec.form = r.MultipartForm.Value
		} else {
			_ = r.ParseForm()
			rec.form = r.PostForm
		}
	}
	f.requests = append(f.requests, rec)

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, "upstream exploded")
		return
	}

	action := rec.query.Get("action")
	if rec.form != nil {
		action = rec.form.Get("action")
	}
	if action == "fetch" {
		_, _ = io.WriteString(w, f.sheets[rec.query.Get("sheet")])
		return
	}
	if body, ok := f.reply[action]; ok {
		_, _ = io.WriteString(w, body)
		return
	}
	_, _ = io.WriteString(w, `{"success":true}`)
}

func (f *fakeService) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New("  ")
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = New("not a url")
	require.ErrorAs(t, err, &cfgErr)
}

func TestFetchDropsHeaderAndStringifiesCells(t *testing.T) {
	f, c := newFakeService(t)
	f.sheets["Documents"] = `{"success":true,"data":[
		["Timestamp","Serial"],
		["15/03/2024 09:00","PN-001","Passport","Personal",null,"","",  "Priya",true,"20/03/2024",1.5,"",  "",971500000000123]
	]}`

	rows, err := c.Fetch(context.Background(), "Documents")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][4])
	assert.Equal(t, "TRUE", rows[0][8])
	assert.Equal(t, "1.5", rows[0][10])
	assert.Equal(t, "971500000000123", rows[0][13])

	req := f.last()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "Documents", req.query.Get("sheet"))
	assert.Equal(t, "fetch", req.query.Get("action"))
}

func TestFetchEmptySheet(t *testing.T) {
	f, c := newFakeService(t)
	f.sheets["Master"] = `{"success":true}`
	rows, err := c.Fetch(context.Background(), "Master")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadsMapLayouts(t *testing.T) {
	f, c := newFakeService(t)
	ctx := context.Background()
	f.sheets["Documents"] = `{"success":true,"data":[["h"],
		["2024-03-01T10:00:00.000Z","PN-001","Passport","Personal","Identity","","x","Priya","Yes","20/03/2030"]]}`
	f.sheets["Updated Renewal"] = `{"success":true,"data":[["h"],
		["2024-03-02T10:00:00.000Z","PN-001","","","","","","y","","Requires Renewal","Priya"]]}`
	f.sheets["Approval Documents"] = `{"success":true,"data":[["h"],
		["15/03/2024 09:00","PN-009","Visa","Personal","","","","Omar","","","","","","",""],
		["15/03/2024 09:00","PN-010","Visa","Personal","","","","Omar","","","","","","","Approved"]]}`
	f.sheets["Shared Documents"] = `{"success":true,"data":[["h"],["15/03/2024","a@b.test","Priya","Passport"]]}`
	f.sheets["Master"] = `{"success":true,"data":[["Types","Categories"],["Passport","Identity"],["Visa",""]]}`
	f.sheets["Pass"] = `{"success":true,"data":[["Name","User","Pass","Role"],["Priya","priya","pw","admin"]]}`

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, documents.OriginPrimary, docs[0].SourceOrigin)
	assert.True(t, docs[0].NeedsRenewal)

	renewals, err := c.Renewals(ctx)
	require.NoError(t, err)
	require.Len(t, renewals, 1)
	assert.Equal(t, documents.OriginRenewal, renewals[0].SourceOrigin)
	assert.True(t, renewals[0].NeedsRenewal)
	assert.Equal(t, []string{"y"}, renewals[0].Tags)

	approvals, err := c.Approvals(ctx)
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	assert.True(t, approvals[0].Pending())
	assert.False(t, approvals[1].Pending())

	shared, err := c.Shared(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "Priya", shared[0].RecipientName)

	master, err := c.Master(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Passport", "Visa"}, master.DocumentTypes)

	accts, err := c.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.True(t, accts[0].IsAdmin())
}

func TestErrorMapping(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		f, c := newFakeService(t)
		f.status = http.StatusBadGateway
		_, err := c.Documents(context.Background())
		assert.True(t, errors.IsServiceUnavailable(err))
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	})

	t.Run("service message", func(t *testing.T) {
		f, c := newFakeService(t)
		f.sheets["Documents"] = `{"success":false,"error":"Sheet not found"}`
		_, err := c.Documents(context.Background())
		assert.True(t, errors.IsServiceFailure(err))
		assert.Equal(t, "Sheet not found", errors.UserMessage(err))
	})

	t.Run("service without message", func(t *testing.T) {
		f, c := newFakeService(t)
		f.reply["markDeleted"] = `{"success":false}`
		err := c.MarkDeleted(context.Background(), documents.Record{SerialNumber: "PN-001"})
		assert.True(t, errors.IsServiceFailure(err))
		assert.Equal(t, errors.DefaultServiceMessage, errors.UserMessage(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		f, c := newFakeService(t)
		f.sheets["Documents"] = `<!DOCTYPE html>`
		_, err := c.Documents(context.Background())
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("malformed rows", func(t *testing.T) {
		f, c := newFakeService(t)
		f.sheets["Documents"] = `{"success":true,"data":{"not":"rows"}}`
		_, err := c.Documents(context.Background())
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}

func TestInsert(t *testing.T) {
	f, c := newFakeService(t)
	err := c.Insert(context.Background(), InsertRow{
		SerialNumber: "PN-005",
		Name:         "Passport",
		Kind:         documents.KindPersonal,
		Category:     "Identity",
		OwnerName:    "Priya",
		NeedsRenewal: true,
		RenewalDueAt: "20/03/2030 10:00",
		FileSize:     "0.10 MB",
		FileURL:      "https://drive.test/f",
	})
	require.NoError(t, err)

	req := f.last()
	assert.True(t, strings.HasPrefix(req.contentType, "multipart/form-data"))
	assert.Equal(t, "insert", req.form.Get("action"))
	assert.Equal(t, "Documents", req.form.Get("sheetName"))

	var cells []string
	require.NoError(t, json.Unmarshal([]byte(req.form.Get("rowData")), &cells))
	require.Len(t, cells, 14)
	rec := documents.MapRowIn(documents.PrimaryLayout, documents.OriginPrimary, cells, time.UTC)
	assert.Equal(t, "15/03/2024 09:30", rec.RawTimestamp)
	assert.Equal(t, "PN-005", rec.SerialNumber)
	assert.Equal(t, documents.KindPersonal, rec.Kind)
	assert.Equal(t, "Identity", rec.Category)
	assert.True(t, rec.NeedsRenewal)
	assert.Equal(t, "https://drive.test/f", rec.ImageReference)
}

func TestApproveReject(t *testing.T) {
	f, c := newFakeService(t)
	rec := documents.ApprovalRecord{Record: documents.Record{SerialNumber: "PN-009", RawTimestamp: "15/03/2024 09:00"}}

	require.NoError(t, c.Approve(context.Background(), rec, "admin"))
	req := f.last()
	assert.Equal(t, "application/x-www-form-urlencoded", req.contentType)
	assert.Equal(t, "approve", req.form.Get("action"))
	assert.Equal(t, "Approval Documents", req.form.Get("sheetName"))
	assert.Equal(t, "PN-009", req.form.Get("serialNo"))
	assert.Equal(t, "15/03/2024 09:00", req.form.Get("timestamp"))
	assert.Equal(t, "admin", req.form.Get("role"))

	require.NoError(t, c.Reject(context.Background(), rec, ""))
	assert.Equal(t, "reject", f.last().form.Get("action"))
	assert.Equal(t, "User", f.last().form.Get("role"))

	err := c.Approve(context.Background(), documents.ApprovalRecord{}, "admin")
	assert.True(t, errors.IsValidationError(err))
}

func TestMarkDeletedTargetsOriginSheet(t *testing.T) {
	f, c := newFakeService(t)
	rec := documents.Record{SerialNumber: "PN-001", RawTimestamp: "2024-03-02T10:00:00.000Z", SourceOrigin: documents.OriginRenewal}

	require.NoError(t, c.MarkDeleted(context.Background(), rec))

	form := f.last().form
	assert.Equal(t, "markDeleted", form.Get("action"))
	assert.Equal(t, "Updated Renewal", form.Get("sheetName"))
	assert.Equal(t, "PN-001", form.Get("serialNo"))
	assert.Equal(t, "2024-03-02T10:00:00.000Z", form.Get("timestamp"))
	assert.Equal(t, "DELETED", form.Get("deletionMarker"))
}

func TestUpdateRenewal(t *testing.T) {
	f, c := newFakeService(t)
	rec := documents.Record{
		DisplayID: 3, SerialNumber: "CN-001", Name: "Licence", Kind: documents.KindCompany,
		Affiliation: "Acme", OwnerName: "Omar", ImageReference: "https://old",
	}

	serial, err := c.UpdateRenewal(context.Background(), RenewalRequest{
		Record: rec, NeedsRenewal: true, RenewalDate: "20/03/2025 10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "CN-001", serial)

	form := f.last().form
	assert.Equal(t, "updateRenewal", form.Get("action"))
	assert.Equal(t, "Updated Renewal", form.Get("sheetName"))
	assert.Equal(t, "3", form.Get("documentId"))
	assert.Equal(t, "Acme", form.Get("company"))
	assert.Equal(t, "true", form.Get("needsRenewal"))
	assert.Equal(t, "20/03/2025 10:00", form.Get("renewalDate"))
	assert.Equal(t, "https://old", form.Get("imageUrl"))
	assert.Equal(t, "CN-001", form.Get("originalSerialNo"))
	assert.Equal(t, "2024-03-15T09:30:00.000Z", form.Get("timestamp"))

	f.reply["updateRenewal"] = `{"success":true,"newSerialNo":"CN-077"}`
	serial, err = c.UpdateRenewal(context.Background(), RenewalRequest{Record: rec, ImageURL: "https://new"})
	require.NoError(t, err)
	assert.Equal(t, "CN-077", serial)
	assert.Equal(t, "false", f.last().form.Get("needsRenewal"))
	assert.Equal(t, "https://new", f.last().form.Get("imageUrl"))

	f.reply["updateRenewal"] = `{"success":false,"message":"Row not found"}`
	_, err = c.UpdateRenewal(context.Background(), RenewalRequest{Record: rec})
	assert.Equal(t, "Row not found", errors.UserMessage(err))
}

func TestUploadFile(t *testing.T) {
	f, c := newFakeService(t)
	f.reply["uploadFile"] = `{"success":true,"fileUrl":"https://drive.google.com/file/d/x/view"}`

	link, err := c.UploadFile(context.Background(), Upload{FileName: "a.pdf", MimeType: "application/pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/x/view", link)

	form := f.last().form
	assert.Equal(t, "folder-1", form.Get("folderId"))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), form.Get("base64Data"))

	f.reply["uploadFile"] = `{"success":true}`
	_, err = c.UploadFile(context.Background(), Upload{FileName: "a.pdf", Data: []byte("x")})
	assert.True(t, errors.IsServiceFailure(err))

	_, err = c.UploadFile(context.Background(), Upload{})
	assert.True(t, errors.IsValidationError(err))
}

func TestShare(t *testing.T) {
	f, c := newFakeService(t)
	docs := []documents.Record{{DisplayID: 1, SerialNumber: "PN-001", Name: "Passport", ContactMobile: "111", SourceOrigin: documents.OriginRenewal}}

	require.NoError(t, c.ShareViaEmail(context.Background(), EmailShare{
		RecipientEmail: "a@b.test", RecipientName: "A", Subject: "Docs", Message: "hi", Documents: docs,
	}))
	form := f.last().form
	assert.Equal(t, "shareViaEmail", form.Get("action"))
	var payload []SharedDocument
	require.NoError(t, json.Unmarshal([]byte(form.Get("documents")), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "Updated Renewal", payload[0].SourceSheet)
	assert.Equal(t, "1", payload[0].ID)

	require.NoError(t, c.ShareViaWhatsApp(context.Background(), "+971 (50) 123-4567", docs))
	form = f.last().form
	assert.Equal(t, "971501234567", form.Get("recipientNumber"))
	payload = nil
	require.NoError(t, json.Unmarshal([]byte(form.Get("documents")), &payload))
	assert.Equal(t, "971501234567", payload[0].RecipientNumber)
	assert.Equal(t, "111", payload[0].OriginalMobile)

	assert.True(t, errors.IsValidationError(c.ShareViaWhatsApp(context.Background(), "n/a", docs)))
	assert.True(t, errors.IsValidationError(c.ShareViaEmail(context.Background(), EmailShare{RecipientEmail: "a@b.test"})))
}

func TestNextSerials(t *testing.T) {
	f, c := newFakeService(t)
	f.reply["getNextSerials"] = `{"success":true,"nextSerials":{"personal":5,"company":12,"director":1}}`

	seeds, err := c.NextSerials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, serials.Seeds{Personal: 5, Company: 12, Director: 1}, seeds)
	assert.Equal(t, "getNextSerials", f.last().query.Get("action"))

	f.reply["getNextSerials"] = `{"success":true}`
	_, err = c.NextSerials(context.Background())
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
