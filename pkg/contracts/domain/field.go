package domain

// Field identifies a canonical, version-independent data point of a
// message trace row. The literal column name carrying it differs between
// export versions and is resolved per dataset.
type Field int

const (
	FieldDateTime Field = iota
	FieldSender
	FieldRecipient
	FieldSubject
	FieldEventID
	FieldSource
	FieldDirection
	FieldMessageID
	FieldNetworkMessageID
	FieldTotalBytes
	FieldRecipientCount
	FieldClientIP
	FieldServerHostname
	FieldRecipientStatus
	FieldAnnotationBlob
	FieldTenantID
	FieldReturnPath
	FieldConnectorID
	FieldClientHostname
	FieldServerIP
	FieldOriginalClientIP
	FieldSourceContext

	// NumFields is the number of canonical fields. Keep it last.
	NumFields
)

var fieldNames = [NumFields]string{
	FieldDateTime:         "dateTime",
	FieldSender:           "sender",
	FieldRecipient:        "recipient",
	FieldSubject:          "subject",
	FieldEventID:          "eventId",
	FieldSource:           "source",
	FieldDirection:        "direction",
	FieldMessageID:        "messageId",
	FieldNetworkMessageID: "networkMessageId",
	FieldTotalBytes:       "totalBytes",
	FieldRecipientCount:   "recipientCount",
	FieldClientIP:         "clientIp",
	FieldServerHostname:   "serverHostname",
	FieldRecipientStatus:  "recipientStatus",
	FieldAnnotationBlob:   "annotationBlob",
	FieldTenantID:         "tenantId",
	FieldReturnPath:       "returnPath",
	FieldConnectorID:      "connectorId",
	FieldClientHostname:   "clientHostname",
	FieldServerIP:         "serverIp",
	FieldOriginalClientIP: "originalClientIp",
	FieldSourceContext:    "sourceContext",
}

// String returns the canonical export name of the field.
func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Valid reports whether f is a known canonical field.
func (f Field) Valid() bool {
	return f >= 0 && f < NumFields
}

// AllFields returns every canonical field in declaration order.
func AllFields() []Field {
	fields := make([]Field, NumFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// ParseField looks up a field by its canonical export name.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}
