package documents

import (
	"strings"
	"time"
)

// SharedRecord is one row of the share history.
type SharedRecord struct {
	SharedAt        time.Time `json:"shared_at" yaml:"shared_at"`
	RawSharedAt     string    `json:"-" yaml:"-"`
	RecipientEmail  string    `json:"recipient_email,omitempty" yaml:"recipient_email,omitempty"`
	RecipientName   string    `json:"recipient_name" yaml:"recipient_name"`
	DocumentName    string    `json:"document_name" yaml:"document_name"`
	DocumentType    string    `json:"document_type" yaml:"document_type"`
	Category        string    `json:"category" yaml:"category"`
	SerialNumber    string    `json:"serial_number" yaml:"serial_number"`
	ImageReference  string    `json:"image,omitempty" yaml:"image,omitempty"`
	SourceSheet     string    `json:"source_sheet" yaml:"source_sheet"`
	ShareMethod     string    `json:"share_method" yaml:"share_method"`
	RecipientMobile string    `json:"recipient_mobile,omitempty" yaml:"recipient_mobile,omitempty"`
}

// MapShared converts a Shared Documents row, filling the display defaults
// the share history has always shown for blank cells.
func MapShared(row []string, loc *time.Location) SharedRecord {
	cell := func(idx int, fallback string) string {
		if idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				return v
			}
		}
		return fallback
	}

	s := SharedRecord{
		RawSharedAt:     cell(sharedColSharedAt, ""),
		RecipientEmail:  cell(sharedColEmail, ""),
		RecipientName:   cell(sharedColRecipient, "N/A"),
		DocumentName:    cell(sharedColDocument, "Unnamed Document"),
		DocumentType:    cell(sharedColType, string(KindPersonal)),
		Category:        cell(sharedColCategory, "Uncategorized"),
		SerialNumber:    cell(sharedColSerial, ""),
		ImageReference:  cell(sharedColImage, ""),
		SourceSheet:     cell(sharedColSource, "Unknown"),
		ShareMethod:     cell(sharedColMethod, "Email"),
		RecipientMobile: cell(sharedColMobile, ""),
	}
	if t, ok := ParseDateIn(s.RawSharedAt, loc); ok {
		s.SharedAt = t
	}
	return s
}

// MasterLists are the dropdown values kept on the Master sheet.
type MasterLists struct {
	DocumentTypes []string `json:"document_types" yaml:"document_types"`
	Categories    []string `json:"categories" yaml:"categories"`
}

// MapMaster collects column 0 as document types and column 1 as categories.
// Values are trimmed and deduplicated in first-seen order.
func MapMaster(rows [][]string) MasterLists {
	lists := MasterLists{DocumentTypes: []string{}, Categories: []string{}}
	seenTypes := map[string]struct{}{}
	seenCats := map[string]struct{}{}
	add := func(list *[]string, seen map[string]struct{}, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		*list = append(*list, v)
	}
	for _, row := range rows {
		if len(row) > 0 {
			add(&lists.DocumentTypes, seenTypes, row[0])
		}
		if len(row) > 1 {
			add(&lists.Categories, seenCats, row[1])
		}
	}
	return lists
}
