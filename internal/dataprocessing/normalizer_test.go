package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mtracecli/pkg/contracts/domain"
)

func TestNormalize(t *testing.T) {
	mapping := ResolveHeader([]string{"Received", "SenderAddress", "Subject", "custom_data"}, DefaultCatalog())

	t.Run("copies resolved values", func(t *testing.T) {
		row := domain.RawRow{
			"Received":      "2025-03-04T09:15:00Z",
			"SenderAddress": "alice@contoso.com",
			"Subject":       "  spaced  ",
			"custom_data":   "S:DPA=DPR|ruleId=x;",
			"Ignored":       "value",
		}
		rec := Normalize(7, row, mapping)

		assert.Equal(t, 7, rec.Index())
		assert.Equal(t, "alice@contoso.com", rec.Value(domain.FieldSender))
		assert.Equal(t, "  spaced  ", rec.Value(domain.FieldSubject), "values are not trimmed")
		assert.Equal(t, "S:DPA=DPR|ruleId=x;", rec.Value(domain.FieldAnnotationBlob))
	})

	t.Run("strips stray quotes", func(t *testing.T) {
		rec := Normalize(0, domain.RawRow{"SenderAddress": `"alice@contoso.com"`}, mapping)
		assert.Equal(t, "alice@contoso.com", rec.Value(domain.FieldSender))
	})

	t.Run("ragged row yields empty present field", func(t *testing.T) {
		rec := Normalize(0, domain.RawRow{"Received": "x"}, mapping)

		v, ok := rec.Lookup(domain.FieldSubject)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("unresolved field is absent", func(t *testing.T) {
		rec := Normalize(0, domain.RawRow{"Recipients": "bob@fabrikam.com"}, mapping)

		_, ok := rec.Lookup(domain.FieldRecipient)
		assert.False(t, ok)
		assert.Len(t, rec.Flat(), int(domain.NumFields))
		assert.Equal(t, "", rec.Flat()["recipient"])
	})
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	mapping := ResolveHeader([]string{"Subject"}, DefaultCatalog())
	rows := []domain.RawRow{{"Subject": "a"}, {"Subject": "b"}, {"Subject": "c"}}

	records := NormalizeAll(rows, mapping)

	assert.Len(t, records, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, i, records[i].Index())
		assert.Equal(t, want, records[i].Value(domain.FieldSubject))
	}
	assert.Empty(t, NormalizeAll(nil, mapping))
}
