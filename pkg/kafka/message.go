package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/sage/pkg/models"
)

// CaseExtractedMessage is the upstream event announcing that a case's
// documents have been extracted and the case is ready for verification
type CaseExtractedMessage struct {
	Type        string               `json:"type"` // "case.extracted"
	TenantID    string               `json:"tenant_id"`
	CaseID      string               `json:"case_id"`
	ExtractedAt time.Time            `json:"extracted_at"`
	Snapshot    *models.CaseSnapshot `json:"snapshot"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	CaseExtracted *CaseExtractedMessage
}

// ParseCaseExtracted parses the message value as a case.extracted event
func (m *IncomingMessage) ParseCaseExtracted() error {
	var msg CaseExtractedMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	m.CaseExtracted = &msg
	return nil
}

// IsCaseExtracted checks whether the message is a case.extracted event.
// The header is authoritative; the body type is a fallback for producers
// that do not set headers.
func (m *IncomingMessage) IsCaseExtracted() bool {
	if msgType := m.Headers["type"]; msgType == "case.extracted" {
		return true
	}

	var evt CaseExtractedMessage
	if err := json.Unmarshal(m.Value, &evt); err == nil {
		return evt.Type == "case.extracted"
	}
	return false
}

// GetTenantID returns the tenant ID from the parsed message, falling back
// to the header
func (m *IncomingMessage) GetTenantID() string {
	if m.CaseExtracted != nil && m.CaseExtracted.TenantID != "" {
		return m.CaseExtracted.TenantID
	}
	if m.CaseExtracted != nil && m.CaseExtracted.Snapshot != nil {
		return m.CaseExtracted.Snapshot.TenantID
	}
	return m.Headers["tenant_id"]
}

// GetCaseID returns the case ID from the parsed message
func (m *IncomingMessage) GetCaseID() string {
	if m.CaseExtracted == nil {
		return ""
	}
	if m.CaseExtracted.CaseID != "" {
		return m.CaseExtracted.CaseID
	}
	if m.CaseExtracted.Snapshot != nil {
		return m.CaseExtracted.Snapshot.ID
	}
	return ""
}

// GetSnapshot returns the case snapshot carried by the message
func (m *IncomingMessage) GetSnapshot() *models.CaseSnapshot {
	if m.CaseExtracted == nil {
		return nil
	}
	return m.CaseExtracted.Snapshot
}
