package sheets

import (
	"context"
	"encoding/base64"
	"regexp"
	"strconv"

	"github.com/agentstation/docledger/internal/transport"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// InsertRow is a new Documents row. It is written in the same column order
// PrimaryLayout reads.
type InsertRow struct {
	Timestamp    string
	SerialNumber string
	Name         string
	Kind         documents.Kind
	Category     string
	Affiliation  string
	Tags         []string
	OwnerName    string
	NeedsRenewal bool
	RenewalDueAt string
	FileSize     string
	FileURL      string
	ContactEmail string
	ContactPhone string
}

// Cells renders the row as positional cells.
func (r InsertRow) Cells() []string {
	// The trailing deletion marker column is never written.
	cells := make([]string, documents.PrimaryLayout.Width()-1)
	set := func(f documents.Field, v string) {
		if idx, ok := documents.PrimaryLayout.Column(f); ok && idx < len(cells) {
			cells[idx] = v
		}
	}
	needs := "No"
	if r.NeedsRenewal {
		needs = "Yes"
	}
	set(documents.FieldTimestamp, r.Timestamp)
	set(documents.FieldSerial, r.SerialNumber)
	set(documents.FieldName, r.Name)
	set(documents.FieldKind, string(r.Kind))
	set(documents.FieldCategory, r.Category)
	set(documents.FieldAffiliation, r.Affiliation)
	set(documents.FieldTags, documents.JoinTags(r.Tags))
	set(documents.FieldOwner, r.OwnerName)
	set(documents.FieldNeedsRenewal, needs)
	set(documents.FieldRenewalDue, r.RenewalDueAt)
	set(documents.FieldFileSize, r.FileSize)
	set(documents.FieldImage, r.FileURL)
	set(documents.FieldEmail, r.ContactEmail)
	set(documents.FieldMobile, r.ContactPhone)
	return cells
}

// Insert appends a row to the Documents sheet.
func (c *Client) Insert(ctx context.Context, row InsertRow) error {
	if row.Timestamp == "" {
		row.Timestamp = c.now().In(c.loc).Format(constants.SheetDateTimeLayout)
	}
	form := transport.NewForm("insert").Set("sheetName", documents.SheetDocuments)
	if err := form.SetJSON("rowData", row.Cells()); err != nil {
		return err
	}
	_, err := c.post(ctx, form, true)
	return err
}

// Approve marks an Approval Documents row approved. role is the reviewer's.
func (c *Client) Approve(ctx context.Context, rec documents.ApprovalRecord, role string) error {
	return c.review(ctx, "approve", rec, role)
}

// Reject marks an Approval Documents row rejected.
func (c *Client) Reject(ctx context.Context, rec documents.ApprovalRecord, role string) error {
	return c.review(ctx, "reject", rec, role)
}

func (c *Client) review(ctx context.Context, action string, rec documents.ApprovalRecord, role string) error {
	if rec.SerialNumber == "" || rec.RawTimestamp == "" {
		return errors.NewValidationError("serialNo", rec.SerialNumber, "serial and timestamp are required")
	}
	if role == "" {
		role = "User"
	}
	form := transport.NewForm(action).
		Set("sheetName", documents.SheetApprovals).
		Set("serialNo", rec.SerialNumber).
		Set("timestamp", rec.RawTimestamp).
		Set("role", role)
	_, err := c.post(ctx, form, false)
	return err
}

// MarkDeleted sets the deletion marker on the record's row in its origin
// sheet.
func (c *Client) MarkDeleted(ctx context.Context, rec documents.Record) error {
	if rec.SerialNumber == "" {
		return errors.NewValidationError("serialNo", "", "serial number is required")
	}
	form := transport.NewForm("markDeleted").
		Set("sheetName", rec.SourceOrigin.Sheet()).
		Set("serialNo", rec.SerialNumber).
		Set("timestamp", rec.RawTimestamp).
		Set("deletionMarker", "DELETED")
	_, err := c.post(ctx, form, true)
	return err
}

// RenewalRequest is the body of an updateRenewal write.
type RenewalRequest struct {
	Record       documents.Record
	NeedsRenewal bool
	RenewalDate  string // DD/MM/YYYY or DD/MM/YYYY HH:mm
	ImageURL     string // replaces the record's image when set
	Timestamp    string // defaults to now
}

// UpdateRenewal writes a renewal amendment to the Updated Renewal sheet and
// returns the serial the service assigned, or the record's own serial.
func (c *Client) UpdateRenewal(ctx context.Context, req RenewalRequest) (string, error) {
	rec := req.Record
	if rec.SerialNumber == "" {
		return "", errors.NewValidationError("serialNo", "", "serial number is required")
	}
	image := rec.ImageReference
	if req.ImageURL != "" {
		image = req.ImageURL
	}
	ts := req.Timestamp
	if ts == "" {
		ts = c.now().UTC().Format(constants.ISOTimestampLayout)
	}
	// documentId is the display position and only informational; the
	// service finds the row by originalSerialNo.
	form := transport.NewForm("updateRenewal").
		Set("sheetName", documents.SheetRenewals).
		Set("documentId", strconv.Itoa(rec.DisplayID)).
		Set("documentName", rec.Name).
		Set("documentType", string(rec.Kind)).
		Set("category", rec.Category).
		Set("company", rec.Affiliation).
		Set("personName", rec.OwnerName).
		SetBool("needsRenewal", req.NeedsRenewal).
		Set("renewalDate", req.RenewalDate).
		Set("email", rec.ContactEmail).
		Set("mobile", rec.ContactMobile).
		Set("imageUrl", image).
		Set("originalSerialNo", rec.SerialNumber).
		Set("timestamp", ts)

	env, err := c.post(ctx, form, true)
	if err != nil {
		return "", err
	}
	if env.NewSerialNo != "" {
		return env.NewSerialNo, nil
	}
	return rec.SerialNumber, nil
}

// Upload is a file to store in Drive.
type Upload struct {
	FileName string
	MimeType string
	Data     []byte
}

// UploadFile stores a file in the configured Drive folder and returns its URL.
func (c *Client) UploadFile(ctx context.Context, up Upload) (string, error) {
	if up.FileName == "" || len(up.Data) == 0 {
		return "", errors.NewValidationError("file", up.FileName, "file name and content are required")
	}
	mimeType := up.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	form := transport.NewForm("uploadFile").
		Set("fileName", up.FileName).
		Set("mimeType", mimeType).
		Set("folderId", c.folderID).
		Set("base64Data", base64.StdEncoding.EncodeToString(up.Data))

	env, err := c.post(ctx, form, true)
	if err != nil {
		return "", err
	}
	if env.FileURL == "" {
		return "", errors.NewServiceError("uploadFile", "File upload failed")
	}
	return env.FileURL, nil
}

// SharedDocument is the per-document payload of a share request.
type SharedDocument struct {
	// ID is the display position, shown in messages only. SerialNo
	// identifies the document.
	ID              string `json:"id"`
	Name            string `json:"name"`
	SerialNo        string `json:"serialNo"`
	DocumentType    string `json:"documentType"`
	Category        string `json:"category"`
	ImageURL        string `json:"imageUrl"`
	SourceSheet     string `json:"sourceSheet"`
	Mobile          string `json:"mobile,omitempty"`
	RecipientNumber string `json:"recipientNumber,omitempty"`
	OriginalMobile  string `json:"originalMobile,omitempty"`
}

// NewSharedDocument builds the share payload for a record.
func NewSharedDocument(rec documents.Record) SharedDocument {
	return SharedDocument{
		ID:           strconv.Itoa(rec.DisplayID),
		Name:         rec.Name,
		SerialNo:     rec.SerialNumber,
		DocumentType: string(rec.Kind),
		Category:     rec.Category,
		ImageURL:     rec.ImageReference,
		SourceSheet:  rec.SourceOrigin.Sheet(),
	}
}

// EmailShare is a shareViaEmail request.
type EmailShare struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	Message        string
	Documents      []documents.Record
}

// ShareViaEmail asks the service to mail links to the documents.
func (c *Client) ShareViaEmail(ctx context.Context, share EmailShare) error {
	if share.RecipientEmail == "" {
		return errors.NewValidationError("recipientEmail", "", "recipient email is required")
	}
	if len(share.Documents) == 0 {
		return errors.NewValidationError("documents", 0, "select at least one document")
	}
	payload := make([]SharedDocument, 0, len(share.Documents))
	for _, rec := range share.Documents {
		payload = append(payload, NewSharedDocument(rec))
	}
	form := transport.NewForm("shareViaEmail").
		Set("recipientEmail", share.RecipientEmail).
		Set("recipientName", share.RecipientName).
		Set("subject", share.Subject).
		Set("message", share.Message)
	if err := form.SetJSON("documents", payload); err != nil {
		return err
	}
	_, err := c.post(ctx, form, true)
	return err
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeNumber strips everything but digits from a phone number.
func NormalizeNumber(number string) string {
	return nonDigits.ReplaceAllString(number, "")
}

// ShareViaWhatsApp asks the service to send the documents to a number.
func (c *Client) ShareViaWhatsApp(ctx context.Context, number string, docs []documents.Record) error {
	number = NormalizeNumber(number)
	if number == "" {
		return errors.NewValidationError("recipientNumber", "", "a phone number is required")
	}
	if len(docs) == 0 {
		return errors.NewValidationError("documents", 0, "select at least one document")
	}
	payload := make([]SharedDocument, 0, len(docs))
	for _, rec := range docs {
		d := NewSharedDocument(rec)
		d.Mobile = number
		d.RecipientNumber = number
		d.OriginalMobile = rec.ContactMobile
		payload = append(payload, d)
	}
	form := transport.NewForm("shareViaWhatsApp").Set("recipientNumber", number)
	if err := form.SetJSON("documents", payload); err != nil {
		return err
	}
	_, err := c.post(ctx, form, true)
	return err
}
