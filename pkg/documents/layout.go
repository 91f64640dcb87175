package documents

// Sheet names understood by the script service.
const (
	SheetDocuments = "Documents"
	SheetRenewals  = "Updated Renewal"
	SheetApprovals = "Approval Documents"
	SheetShared    = "Shared Documents"
	SheetMaster    = "Master"
	SheetAccounts  = "Pass"
)

// Field names a record attribute a layout can map a column to.
type Field int

// Mappable fields.
const (
	FieldTimestamp Field = iota
	FieldSerial
	FieldName
	FieldKind
	FieldCategory
	FieldAffiliation
	FieldTags
	FieldOwner
	FieldNeedsRenewal
	FieldRenewalDue
	FieldRenewalInfo
	FieldFileSize
	FieldImage
	FieldEmail
	FieldMobile
	FieldDeletion
	FieldStatus
)

var fieldNames = map[Field]string{
	FieldTimestamp:    "timestamp",
	FieldSerial:       "serial",
	FieldName:         "name",
	FieldKind:         "kind",
	FieldCategory:     "category",
	FieldAffiliation:  "affiliation",
	FieldTags:         "tags",
	FieldOwner:        "owner",
	FieldNeedsRenewal: "needs_renewal",
	FieldRenewalDue:   "renewal_due",
	FieldRenewalInfo:  "renewal_info",
	FieldFileSize:     "file_size",
	FieldImage:        "image",
	FieldEmail:        "email",
	FieldMobile:       "mobile",
	FieldDeletion:     "deletion",
	FieldStatus:       "status",
}

// String returns the field name.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Layout is the column table of one sheet: which zero-based column holds
// which field. Fields without an entry are left at their zero value.
type Layout struct {
	Sheet   string
	Columns map[Field]int
}

// Column returns the index mapped to f.
func (l Layout) Column(f Field) (int, bool) {
	idx, ok := l.Columns[f]
	return idx, ok
}

// Has reports whether the layout maps f.
func (l Layout) Has(f Field) bool {
	_, ok := l.Columns[f]
	return ok
}

// Width is one past the highest mapped column.
func (l Layout) Width() int {
	width := 0
	for _, idx := range l.Columns {
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width
}

// PrimaryLayout is the Documents sheet.
var PrimaryLayout = Layout{
	Sheet: SheetDocuments,
	Columns: map[Field]int{
		FieldTimestamp:    0,
		FieldSerial:       1,
		FieldName:         2,
		FieldKind:         3,
		FieldCategory:     4,
		FieldAffiliation:  5,
		FieldTags:         6,
		FieldOwner:        7,
		FieldNeedsRenewal: 8,
		FieldRenewalDue:   9,
		FieldFileSize:     10,
		FieldImage:        11,
		FieldEmail:        12,
		FieldMobile:       13,
		FieldDeletion:     14,
	},
}

// RenewalLayout is the Updated Renewal sheet. Column 9 holds either a due
// date or a free-text renewal marker, and there is no kind column.
var RenewalLayout = Layout{
	Sheet: SheetRenewals,
	Columns: map[Field]int{
		FieldTimestamp:   0,
		FieldSerial:      1,
		FieldName:        3,
		FieldCategory:    5,
		FieldAffiliation: 6,
		FieldTags:        7,
		FieldRenewalInfo: 9,
		FieldOwner:       10,
		FieldEmail:       11,
		FieldMobile:      12,
		FieldImage:       13,
		FieldDeletion:    14,
	},
}

// ApprovalLayout is the Approval Documents sheet: the primary layout with
// column 14 carrying the review status instead of a deletion marker.
var ApprovalLayout = Layout{
	Sheet: SheetApprovals,
	Columns: map[Field]int{
		FieldTimestamp:    0,
		FieldSerial:       1,
		FieldName:         2,
		FieldKind:         3,
		FieldCategory:     4,
		FieldAffiliation:  5,
		FieldTags:         6,
		FieldOwner:        7,
		FieldNeedsRenewal: 8,
		FieldRenewalDue:   9,
		FieldFileSize:     10,
		FieldImage:        11,
		FieldEmail:        12,
		FieldMobile:       13,
		FieldStatus:       14,
	},
}

// Shared Documents columns.
const (
	sharedColSharedAt = iota
	sharedColEmail
	sharedColRecipient
	sharedColDocument
	sharedColType
	sharedColCategory
	sharedColSerial
	sharedColImage
	sharedColSource
	sharedColMethod
	sharedColMobile
)

// Pass columns.
const (
	AccountColName = iota
	AccountColUsername
	AccountColPassword
	AccountColRole
)
