package reconcile

import (
	"github.com/agentstation/docledger/pkg/documents"
)

// Merge lays incoming over prior. Scalar fields take the incoming value
// unless it is the zero value, tags are the union of both, and timestamp
// and origin always come from incoming.
func Merge(prior, incoming documents.Record) documents.Record {
	out := prior.Clone()

	out.SourceTimestamp = incoming.SourceTimestamp
	out.RawTimestamp = incoming.RawTimestamp
	out.SourceOrigin = incoming.SourceOrigin

	pick(&out.SerialNumber, incoming.SerialNumber)
	pick(&out.Name, incoming.Name)
	pick(&out.Kind, incoming.Kind)
	pick(&out.Category, incoming.Category)
	pick(&out.Affiliation, incoming.Affiliation)
	pick(&out.OwnerName, incoming.OwnerName)
	pick(&out.RenewalDueAt, incoming.RenewalDueAt)
	pick(&out.FileSize, incoming.FileSize)
	pick(&out.ImageReference, incoming.ImageReference)
	pick(&out.ContactEmail, incoming.ContactEmail)
	pick(&out.ContactMobile, incoming.ContactMobile)
	pick(&out.NeedsRenewal, incoming.NeedsRenewal)
	pick(&out.IsDeleted, incoming.IsDeleted)

	out.Tags = documents.UnionTags(prior.Tags, incoming.Tags)
	return out
}

func pick[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
