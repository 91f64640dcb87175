package serials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/serials"
)

func TestAllocatorConsecutive(t *testing.T) {
	a := serials.NewAllocator(serials.Seeds{Personal: 5, Company: 1, Director: 998})

	assert.Equal(t, "PN-005", a.Next(documents.KindPersonal))
	assert.Equal(t, "PN-006", a.Next(documents.KindPersonal))
	assert.Equal(t, "CN-001", a.Next(documents.KindCompany))
	assert.Equal(t, "PN-007", a.Next(documents.KindPersonal))

	assert.Equal(t, "DN-998", a.Next(documents.KindDirector))
	assert.Equal(t, "DN-999", a.Next(""))
	assert.Equal(t, "DN-1000", a.Peek(documents.KindDirector))
	assert.Equal(t, "DN-1000", a.Next(documents.KindDirector))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		kind documents.Kind
		seq  int
		want string
	}{
		{documents.KindPersonal, 0, "PN-000"},
		{documents.KindCompany, 42, "CN-042"},
		{documents.KindDirector, 7, "DN-007"},
		{"Other", 7, "DN-007"},
		{documents.KindPersonal, 12345, "PN-12345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serials.Format(tt.kind, tt.seq))
	}
}

func TestParse(t *testing.T) {
	prefix, seq, err := serials.Parse(" CN-042 ")
	require.NoError(t, err)
	assert.Equal(t, "CN", prefix)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "PN", "PN-", "XX-001", "PN-abc", "PN--1"} {
		_, _, err := serials.Parse(bad)
		assert.True(t, errors.IsValidationError(err), bad)
	}
}
