package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtracecli/internal/shared/testutil"
	"mtracecli/pkg/contracts/domain"
)

func TestResolveHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		field   domain.Field
		want    string
		present bool
	}{
		{
			name:    "historical search export",
			header:  testutil.TraceHeader,
			field:   domain.FieldSender,
			want:    "sender_address",
			present: true,
		},
		{
			name:    "interactive export",
			header:  []string{"Received", "SenderAddress", "RecipientAddress", "Subject", "Status"},
			field:   domain.FieldDateTime,
			want:    "Received",
			present: true,
		},
		{
			name:    "earlier synonym wins",
			header:  []string{"Sender", "sender_address"},
			field:   domain.FieldSender,
			want:    "sender_address",
			present: true,
		},
		{
			name:    "case sensitive",
			header:  []string{"SENDER_ADDRESS"},
			field:   domain.FieldSender,
			present: false,
		},
		{
			name:    "empty header",
			header:  nil,
			field:   domain.FieldAnnotationBlob,
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := ResolveHeader(tt.header, DefaultCatalog())
			got, ok := mapping.Resolve(tt.field)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCoversEveryField(t *testing.T) {
	mapping := ResolveHeader([]string{"Subject"}, DefaultCatalog())

	assert.Equal(t, 1, mapping.PresentCount())
	assert.Len(t, mapping.Missing(), int(domain.NumFields)-1)
	assert.Len(t, mapping.AsMap(), int(domain.NumFields))
	assert.Equal(t, domain.Resolution{Source: "Subject", Present: true}, mapping.Resolution(domain.FieldSubject))
}

func TestResolveEmptyCatalog(t *testing.T) {
	mapping := ResolveHeader(testutil.TraceHeader, nil)
	assert.Zero(t, mapping.PresentCount())
}

func TestResolveInvalidCatalogEntry(t *testing.T) {
	catalog := domain.FieldCatalog{
		{Field: domain.Field(-1), Synonyms: []string{"x"}},
		{Field: domain.FieldSubject, Synonyms: []string{"x"}},
	}
	mapping := Resolve(map[string]struct{}{"x": {}}, catalog)

	assert.Equal(t, 1, mapping.PresentCount())
	src, ok := mapping.Resolve(domain.FieldSubject)
	assert.True(t, ok)
	assert.Equal(t, "x", src)
}

func TestLoadCatalog(t *testing.T) {
	t.Run("prepends extra synonyms", func(t *testing.T) {
		yaml := "synonyms:\n  sender: [\"Envelope From\"]\n"
		catalog, err := LoadCatalog(strings.NewReader(yaml), DefaultCatalog())
		require.NoError(t, err)

		synonyms := catalog.Synonyms(domain.FieldSender)
		require.NotEmpty(t, synonyms)
		assert.Equal(t, "Envelope From", synonyms[0])
		assert.Contains(t, synonyms, "sender_address")

		mapping := ResolveHeader([]string{"Envelope From", "sender_address"}, catalog)
		src, _ := mapping.Resolve(domain.FieldSender)
		assert.Equal(t, "Envelope From", src)
	})

	t.Run("adds fields missing from base", func(t *testing.T) {
		yaml := "synonyms:\n  tenantId: [\"Org\"]\n"
		catalog, err := LoadCatalog(strings.NewReader(yaml), domain.FieldCatalog{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Org"}, catalog.Synonyms(domain.FieldTenantID))
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader("synonyms:\n  nope: [a]\n"), DefaultCatalog())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadCatalog(strings.NewReader("synonyms: [\n"), DefaultCatalog())
		assert.Error(t, err)
	})
}

func TestLoadCatalogFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		catalog, err := LoadCatalogFile("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog(), catalog)
	})

	t.Run("from disk", func(t *testing.T) {
		path := testutil.WriteTempFile(t, "catalog.yaml", []byte("synonyms:\n  subject: [Betreff]\n"))
		catalog, err := LoadCatalogFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Betreff", catalog.Synonyms(domain.FieldSubject)[0])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalogFile("/does/not/exist.yaml")
		assert.Error(t, err)
	})
}
