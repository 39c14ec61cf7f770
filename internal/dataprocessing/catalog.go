package dataprocessing

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"mtracecli/pkg/contracts/domain"
)

// DefaultCatalog returns the synonym catalog covering the message trace
// export versions seen so far: the historical search CSV (snake_case), the
// interactive trace export (PascalCase) and the legacy report columns.
// Synonyms are tried in order, so more specific names come first.
func DefaultCatalog() domain.FieldCatalog {
	return domain.FieldCatalog{
		{Field: domain.FieldDateTime, Synonyms: []string{"date_time_utc", "origin_timestamp_utc", "Received", "DateTime", "Date", "Timestamp", "origin_timestamp"}},
		{Field: domain.FieldSender, Synonyms: []string{"sender_address", "SenderAddress", "Sender", "From", "sender"}},
		{Field: domain.FieldRecipient, Synonyms: []string{"recipient_address", "RecipientAddress", "Recipients", "Recipient", "To", "recipient"}},
		{Field: domain.FieldSubject, Synonyms: []string{"message_subject", "MessageSubject", "Subject", "subject"}},
		{Field: domain.FieldEventID, Synonyms: []string{"event_id", "EventId", "EventID", "Event"}},
		{Field: domain.FieldSource, Synonyms: []string{"source", "Source"}},
		{Field: domain.FieldDirection, Synonyms: []string{"directionality", "Directionality", "Direction"}},
		{Field: domain.FieldMessageID, Synonyms: []string{"message_id", "MessageId", "MessageID", "internal_message_id"}},
		{Field: domain.FieldNetworkMessageID, Synonyms: []string{"network_message_id", "NetworkMessageId", "MessageTraceId"}},
		{Field: domain.FieldTotalBytes, Synonyms: []string{"total_bytes", "TotalBytes", "Size", "MessageSize"}},
		{Field: domain.FieldRecipientCount, Synonyms: []string{"recipient_count", "RecipientCount"}},
		{Field: domain.FieldClientIP, Synonyms: []string{"client_ip", "ClientIP", "ClientIp", "FromIP"}},
		{Field: domain.FieldServerHostname, Synonyms: []string{"server_hostname", "ServerHostname"}},
		{Field: domain.FieldRecipientStatus, Synonyms: []string{"recipient_status", "RecipientStatus", "DeliveryStatus", "Status"}},
		{Field: domain.FieldAnnotationBlob, Synonyms: []string{"custom_data", "CustomData", "AnnotationData"}},
		{Field: domain.FieldTenantID, Synonyms: []string{"tenant_id", "TenantId", "OrganizationId"}},
		{Field: domain.FieldReturnPath, Synonyms: []string{"return_path", "ReturnPath"}},
		{Field: domain.FieldConnectorID, Synonyms: []string{"connector_id", "ConnectorId"}},
		{Field: domain.FieldClientHostname, Synonyms: []string{"client_hostname", "ClientHostname"}},
		{Field: domain.FieldServerIP, Synonyms: []string{"server_ip", "ServerIP", "ServerIp", "ToIP"}},
		{Field: domain.FieldOriginalClientIP, Synonyms: []string{"original_client_ip", "OriginalClientIp"}},
		{Field: domain.FieldSourceContext, Synonyms: []string{"source_context", "SourceContext"}},
	}
}

// catalogFile is the on-disk shape of a catalog extension: canonical field
// name to extra synonyms.
type catalogFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// LoadCatalog reads extra synonyms from YAML and returns base with them
// prepended to each field's list, so site-specific names win.
//
//	synonyms:
//	  sender: ["Envelope From"]
//	  annotationBlob: ["Annotations"]
func LoadCatalog(r io.Reader, base domain.FieldCatalog) (domain.FieldCatalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	extra := make(map[domain.Field][]string, len(file.Synonyms))
	for name, synonyms := range file.Synonyms {
		f, ok := domain.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("parse catalog: unknown field %q", name)
		}
		extra[f] = synonyms
	}

	merged := make(domain.FieldCatalog, 0, len(base))
	seen := make(map[domain.Field]bool, len(base))
	for _, entry := range base {
		synonyms := append(append([]string{}, extra[entry.Field]...), entry.Synonyms...)
		merged = append(merged, domain.CatalogEntry{Field: entry.Field, Synonyms: synonyms})
		seen[entry.Field] = true
	}
	for _, f := range domain.AllFields() {
		if !seen[f] && len(extra[f]) > 0 {
			merged = append(merged, domain.CatalogEntry{Field: f, Synonyms: extra[f]})
		}
	}
	return merged, nil
}

// LoadCatalogFile is LoadCatalog over a file path. An empty path returns
// DefaultCatalog unchanged.
func LoadCatalogFile(path string) (domain.FieldCatalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f, DefaultCatalog())
}
