package docledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
	"github.com/agentstation/docledger/pkg/serials"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC)
}

func primaryRecord(serial, name string, ts time.Time) documents.Record {
	return documents.Record{
		SerialNumber:    serial,
		SourceTimestamp: ts,
		RawTimestamp:    ts.Format("02/01/2006 15:04"),
		SourceOrigin:    documents.OriginPrimary,
		Name:            name,
		Kind:            documents.KindPersonal,
		OwnerName:       "Ana",
		Tags:            []string{},
	}
}

func newTestClient(t *testing.T, svc *fakeService, opts ...docledger.Option) docledger.Client {
	t.Helper()
	opts = append([]docledger.Option{
		docledger.WithService(svc),
		docledger.WithClock(func() time.Time { return testNow }),
		docledger.WithLocation(time.UTC),
		docledger.WithLogger(logging.NewNopLogger()),
	}, opts...)
	dl, err := docledger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dl.AutoRefreshOff() })
	return dl
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := docledger.New()
	require.Error(t, err)
	var cerr *errors.ConfigError
	assert.ErrorAs(t, err, &cerr)

	_, err = docledger.New(docledger.WithTieBreak("newest"))
	assert.True(t, errors.IsValidationError(err))

	dl, err := docledger.New(docledger.WithEndpoint("https://script.example.com/exec"))
	require.NoError(t, err)
	assert.Empty(t, dl.Documents())
}

func TestRefreshReconcilesLedgers(t *testing.T) {
	primary := primaryRecord("PN-001", "Passport", day(1))
	primary.Tags = []string{"travel"}
	renewal := documents.Record{
		SerialNumber:    "PN-001",
		SourceTimestamp: day(10),
		SourceOrigin:    documents.OriginRenewal,
		Name:            "Passport",
		NeedsRenewal:    true,
		RenewalDueAt:    "20/03/2024",
		Tags:            []string{"urgent"},
	}
	svc := &fakeService{
		primary:  []documents.Record{primary, primaryRecord("CN-001", "Trade licence", day(5))},
		renewals: []documents.Record{renewal},
	}
	dl := newTestClient(t, svc)

	var added []string
	dl.OnDocumentAdded(func(rec documents.Record) { added = append(added, rec.SerialNumber) })

	require.NoError(t, dl.Refresh(context.Background()))

	docs := dl.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "PN-001", docs[0].SerialNumber)
	assert.Equal(t, 1, docs[0].DisplayID)
	assert.Equal(t, documents.OriginRenewal, docs[0].SourceOrigin)
	assert.Equal(t, documents.KindPersonal, docs[0].Kind)
	assert.True(t, docs[0].NeedsRenewal)
	assert.Equal(t, []string{"travel", "urgent"}, docs[0].Tags)
	assert.Equal(t, "CN-001", docs[1].SerialNumber)
	assert.Equal(t, 2, docs[1].DisplayID)

	assert.ElementsMatch(t, []string{"PN-001", "CN-001"}, added)
	assert.Equal(t, testNow, dl.RefreshedAt())

	rec, err := dl.Get("CN-001")
	require.NoError(t, err)
	assert.Equal(t, "Trade licence", rec.Name)

	_, err = dl.Get("XX-999")
	assert.True(t, errors.IsNotFound(err))
}

func TestRefreshFailureKeepsCollection(t *testing.T) {
	svc := &fakeService{primary: []documents.Record{primaryRecord("PN-001", "Passport", day(1))}}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	svc.mu.Lock()
	svc.primary = nil
	svc.errRenewals = errors.NewServiceError("fetch", "Sheet not found")
	svc.mu.Unlock()

	err := dl.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsServiceFailure(err))
	assert.Equal(t, "Sheet not found", errors.UserMessage(err))
	require.Len(t, dl.Documents(), 1)
}

func TestRefreshHooksDiffBySerial(t *testing.T) {
	svc := &fakeService{primary: []documents.Record{
		primaryRecord("PN-001", "Passport", day(1)),
		primaryRecord("PN-002", "Visa", day(2)),
	}}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	var updated, removed, added []string
	dl.OnDocumentUpdated(func(old, new documents.Record) {
		updated = append(updated, old.Name+"->"+new.Name)
	})
	dl.OnDocumentRemoved(func(rec documents.Record) { removed = append(removed, rec.SerialNumber) })
	dl.OnDocumentAdded(func(rec documents.Record) { added = append(added, rec.SerialNumber) })

	svc.mu.Lock()
	svc.primary = []documents.Record{
		primaryRecord("PN-001", "Passport (renewed)", day(1)),
		primaryRecord("PN-003", "Licence", day(3)),
	}
	svc.mu.Unlock()
	require.NoError(t, dl.Refresh(context.Background()))

	assert.Equal(t, []string{"Passport->Passport (renewed)"}, updated)
	assert.Equal(t, []string{"PN-002"}, removed)
	assert.Equal(t, []string{"PN-003"}, added)

	// Renumbering alone is not an update.
	updated = nil
	require.NoError(t, dl.Refresh(context.Background()))
	assert.Empty(t, updated)
}

func TestRefreshDiscardsStaleResult(t *testing.T) {
	gate := make(chan struct{})
	svc := &fakeService{
		primary:          []documents.Record{primaryRecord("PN-001", "Old", day(1))},
		documentsGate:    gate,
		documentsEntered: make(chan struct{}, 1),
	}
	dl := newTestClient(t, svc)

	slow := make(chan error, 1)
	go func() { slow <- dl.Refresh(context.Background()) }()
	<-svc.documentsEntered

	svc.mu.Lock()
	svc.documentsGate = nil
	svc.primary = []documents.Record{primaryRecord("PN-001", "New", day(2))}
	svc.mu.Unlock()
	require.NoError(t, dl.Refresh(context.Background()))

	close(gate)
	err := <-slow
	assert.ErrorIs(t, err, errors.ErrStale)

	docs := dl.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "New", docs[0].Name)
}

func TestRefreshKeepsResultWhenNewerRefreshFails(t *testing.T) {
	gate := make(chan struct{})
	svc := &fakeService{
		primary:          []documents.Record{primaryRecord("PN-001", "Passport", day(1))},
		documentsGate:    gate,
		documentsEntered: make(chan struct{}, 1),
	}
	dl := newTestClient(t, svc)

	slow := make(chan error, 1)
	go func() { slow <- dl.Refresh(context.Background()) }()
	<-svc.documentsEntered

	svc.mu.Lock()
	svc.documentsGate = nil
	svc.errDocuments = errors.NewAPIError("fetch", 503, "unavailable")
	svc.mu.Unlock()
	assert.Error(t, dl.Refresh(context.Background()))

	svc.mu.Lock()
	svc.errDocuments = nil
	svc.mu.Unlock()
	close(gate)
	require.NoError(t, <-slow)

	docs := dl.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Passport", docs[0].Name)
}

func TestRefreshDiscardedAfterMutation(t *testing.T) {
	gate := make(chan struct{})
	svc := &fakeService{
		primary: []documents.Record{
			primaryRecord("PN-001", "Passport", day(1)),
			primaryRecord("PN-002", "Visa", day(2)),
		},
	}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	svc.mu.Lock()
	svc.documentsGate = gate
	svc.documentsEntered = make(chan struct{}, 1)
	svc.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- dl.Refresh(context.Background()) }()
	<-svc.documentsEntered

	require.NoError(t, dl.MarkDeleted(context.Background(), "PN-002"))
	close(gate)
	assert.ErrorIs(t, <-slow, errors.ErrStale)

	docs := dl.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "PN-001", docs[0].SerialNumber)
}

func TestMarkDeleted(t *testing.T) {
	renewal := primaryRecord("PN-002", "Visa", day(4))
	renewal.SourceOrigin = documents.OriginRenewal
	svc := &fakeService{primary: []documents.Record{
		primaryRecord("PN-001", "Passport", day(1)),
		primaryRecord("PN-003", "Licence", day(3)),
	}, renewals: []documents.Record{renewal}}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	var removed []string
	dl.OnDocumentRemoved(func(rec documents.Record) { removed = append(removed, rec.SerialNumber) })

	require.NoError(t, dl.MarkDeleted(context.Background(), "PN-002"))
	require.Len(t, svc.deleted, 1)
	assert.Equal(t, documents.OriginRenewal, svc.deleted[0].SourceOrigin)
	assert.Equal(t, []string{"PN-002"}, removed)

	docs := dl.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "PN-003", docs[0].SerialNumber)
	assert.Equal(t, 1, docs[0].DisplayID)
	assert.Equal(t, 2, docs[1].DisplayID)

	assert.True(t, errors.IsNotFound(dl.MarkDeleted(context.Background(), "PN-002")))

	svc.errWrite = errors.NewServiceError("markDeleted", "Row not found")
	err := dl.MarkDeleted(context.Background(), "PN-001")
	assert.True(t, errors.IsServiceFailure(err))
	assert.Len(t, dl.Documents(), 2)
}

func TestUpdateRenewal(t *testing.T) {
	svc := &fakeService{
		primary: []documents.Record{
			primaryRecord("PN-001", "Passport", day(1)),
			primaryRecord("PN-002", "Visa", day(2)),
		},
		newSerial: "PN-010",
	}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	var updates [][2]string
	dl.OnDocumentUpdated(func(old, new documents.Record) {
		updates = append(updates, [2]string{old.SerialNumber, new.SerialNumber})
	})

	rec, err := dl.UpdateRenewal(context.Background(), "PN-001", docledger.RenewalUpdate{
		NeedsRenewal: true,
		DueDate:      time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		DueTime:      "14:30",
		File:         &sheets.Upload{FileName: "scan.pdf", Data: []byte("pdf")},
	})
	require.NoError(t, err)

	require.Len(t, svc.renewalReqs, 1)
	req := svc.renewalReqs[0]
	assert.Equal(t, "PN-001", req.Record.SerialNumber)
	assert.Equal(t, "02/04/2024 14:30", req.RenewalDate)
	assert.Equal(t, "2024-03-15T09:30:00.000Z", req.Timestamp)
	assert.Equal(t, "https://drive.google.com/file/d/scan.pdf/view", req.ImageURL)

	assert.Equal(t, "PN-010", rec.SerialNumber)
	assert.Equal(t, documents.OriginRenewal, rec.SourceOrigin)
	assert.Equal(t, testNow, rec.SourceTimestamp)
	assert.Equal(t, req.ImageURL, rec.ImageReference)
	assert.Equal(t, 1, rec.DisplayID)

	docs := dl.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "PN-010", docs[0].SerialNumber)
	assert.Equal(t, "PN-002", docs[1].SerialNumber)
	assert.Equal(t, 2, docs[1].DisplayID)
	assert.Equal(t, [][2]string{{"PN-001", "PN-010"}}, updates)
}

func TestUpdateRenewalValidation(t *testing.T) {
	svc := &fakeService{primary: []documents.Record{primaryRecord("PN-001", "Passport", day(1))}}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	_, err := dl.UpdateRenewal(context.Background(), "PN-001", docledger.RenewalUpdate{NeedsRenewal: true})
	assert.True(t, errors.IsValidationError(err))

	_, err = dl.UpdateRenewal(context.Background(), "PN-001", docledger.RenewalUpdate{
		NeedsRenewal: true,
		DueDate:      testNow,
		DueTime:      "2pm",
	})
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, svc.renewalReqs)

	rec, err := dl.UpdateRenewal(context.Background(), "PN-001", docledger.RenewalUpdate{NeedsRenewal: false})
	require.NoError(t, err)
	assert.False(t, rec.NeedsRenewal)
	assert.Empty(t, rec.RenewalDueAt)
}

func TestSubmit(t *testing.T) {
	svc := &fakeService{seeds: serials.Seeds{Personal: 5, Company: 2, Director: 1}}
	dl := newTestClient(t, svc)

	got, err := dl.Submit(context.Background(), []docledger.NewDocument{
		{Name: "Passport", Kind: documents.KindPersonal, OwnerName: "Ana",
			File: &sheets.Upload{FileName: "passport.jpg", Data: make([]byte, 2*1024*1024)}},
		{Name: "Licence", Kind: documents.KindCompany, NeedsRenewal: true,
			DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), DueTime: "09:00"},
		{Name: "Visa", Kind: "personal"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"PN-005", "CN-002", "PN-006"}, got)

	require.Len(t, svc.inserts, 3)
	first := svc.inserts[0]
	assert.Equal(t, "15/03/2024 09:30", first.Timestamp)
	assert.Equal(t, "2.00 MB", first.FileSize)
	assert.Equal(t, "https://drive.google.com/file/d/passport.jpg/view", first.FileURL)
	assert.Equal(t, "01/06/2024 09:00", svc.inserts[1].RenewalDueAt)
	assert.Equal(t, "0.00 MB", svc.inserts[2].FileSize)
	assert.Equal(t, documents.KindPersonal, svc.inserts[2].Kind)
	assert.Empty(t, svc.inserts[2].RenewalDueAt)
}

func TestSubmitStopsAtFirstFailure(t *testing.T) {
	svc := &fakeService{seeds: serials.Seeds{Personal: 1, Company: 1, Director: 1}, errInsertAt: 2}
	dl := newTestClient(t, svc)

	got, err := dl.Submit(context.Background(), []docledger.NewDocument{
		{Name: "A", Kind: documents.KindPersonal},
		{Name: "B", Kind: documents.KindPersonal},
		{Name: "C", Kind: documents.KindPersonal},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"PN-001"}, got)

	var batch *errors.BatchError
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, 1, batch.Persisted())
	assert.Equal(t, 3, batch.Total)
	assert.True(t, errors.IsServiceFailure(err))
	assert.Len(t, svc.inserts, 1)
}

func TestSubmitValidatesBeforeWriting(t *testing.T) {
	ok := docledger.NewDocument{Name: "ok", Kind: documents.KindPersonal}
	tests := []struct {
		name string
		docs []docledger.NewDocument
	}{
		{"empty batch", nil},
		{"missing name", []docledger.NewDocument{ok, {Kind: documents.KindPersonal}}},
		{"unknown kind", []docledger.NewDocument{ok, {Name: "A", Kind: "Vehicle"}}},
		{"renewal without date", []docledger.NewDocument{ok, {Name: "A", Kind: documents.KindCompany, NeedsRenewal: true}}},
		{"bad time", []docledger.NewDocument{ok, {Name: "A", Kind: documents.KindCompany, DueDate: testNow, DueTime: "25:99"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			dl := newTestClient(t, svc)
			_, err := dl.Submit(context.Background(), tt.docs)
			assert.True(t, errors.IsValidationError(err))
			assert.Empty(t, svc.inserts)
		})
	}
}

func TestApprovals(t *testing.T) {
	pending := documents.ApprovalRecord{Record: documents.Record{SerialNumber: "PN-004", RawTimestamp: "01/03/2024 10:00"}, Status: documents.StatusPending}
	done := documents.ApprovalRecord{Record: documents.Record{SerialNumber: "PN-003"}, Status: documents.StatusApproved}
	svc := &fakeService{approvals: []documents.ApprovalRecord{pending, done}}
	dl := newTestClient(t, svc)

	got, err := dl.Approvals(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PN-004", got[0].SerialNumber)

	require.NoError(t, dl.Approve(context.Background(), "PN-004", "01/03/2024 10:00", "admin"))
	require.NoError(t, dl.Reject(context.Background(), "PN-005", "02/03/2024 10:00", "admin"))
	require.Len(t, svc.approved, 1)
	assert.Equal(t, "01/03/2024 10:00", svc.approved[0].RawTimestamp)
	require.Len(t, svc.rejected, 1)
	assert.Equal(t, "PN-005", svc.rejected[0].SerialNumber)
}

func TestShareResolvesSerials(t *testing.T) {
	svc := &fakeService{primary: []documents.Record{primaryRecord("PN-001", "Passport", day(1))}}
	dl := newTestClient(t, svc)
	require.NoError(t, dl.Refresh(context.Background()))

	require.NoError(t, dl.ShareViaEmail(context.Background(), docledger.EmailShare{
		RecipientEmail: "bob@example.com",
		Subject:        "Docs",
		Serials:        []string{"PN-001"},
	}))
	require.Len(t, svc.emailShares, 1)
	require.Len(t, svc.emailShares[0].Documents, 1)
	assert.Equal(t, "Passport", svc.emailShares[0].Documents[0].Name)

	require.NoError(t, dl.ShareViaWhatsApp(context.Background(), "+971 50 123", []string{"PN-001"}))
	assert.Equal(t, "+971 50 123", svc.whatsappTo)
	require.Len(t, svc.whatsappDocs, 1)

	err := dl.ShareViaWhatsApp(context.Background(), "123", []string{"PN-404"})
	assert.True(t, errors.IsNotFound(err))
	err = dl.ShareViaWhatsApp(context.Background(), "123", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestAuthenticate(t *testing.T) {
	svc := &fakeService{accounts: []accounts.Account{
		{Name: "Ana", Username: "ana", Password: "pw", Role: "admin"},
	}}
	dl := newTestClient(t, svc)

	acct, err := dl.Authenticate(context.Background(), " ANA ", "pw")
	require.NoError(t, err)
	assert.True(t, acct.IsAdmin())

	_, err = dl.Authenticate(context.Background(), "ana", "wrong")
	assert.True(t, errors.IsUnauthorized(err))
}

func TestAutoRefresh(t *testing.T) {
	svc := &fakeService{primary: []documents.Record{primaryRecord("PN-001", "Passport", day(1))}}

	dl := newTestClient(t, svc, docledger.WithAutoRefreshInterval(0))
	assert.True(t, errors.IsValidationError(dl.AutoRefreshOn()))

	dl = newTestClient(t, svc,
		docledger.WithAutoRefreshInterval(10*time.Millisecond),
		docledger.WithAutoRefresh(true),
	)
	assert.Eventually(t, func() bool {
		return len(dl.Documents()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, dl.AutoRefreshOff())
	require.NoError(t, dl.AutoRefreshOff())
}
