package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseExtractedBody() []byte {
	return []byte(`{
		"type": "case.extracted",
		"tenant_id": "tenant-1",
		"case_id": "case-1",
		"snapshot": {
			"id": "case-1",
			"tenant_id": "tenant-1",
			"members": [{"id": "m1", "full_name": "Maria Garcia", "relationship": "primary_applicant"}]
		}
	}`)
}

func TestParseCaseExtracted(t *testing.T) {
	t.Run("valid message", func(t *testing.T) {
		msg := &IncomingMessage{Value: caseExtractedBody()}
		require.NoError(t, msg.ParseCaseExtracted())
		require.NotNil(t, msg.CaseExtracted)
		assert.Equal(t, "case.extracted", msg.CaseExtracted.Type)
		assert.Equal(t, "tenant-1", msg.CaseExtracted.TenantID)
		require.NotNil(t, msg.CaseExtracted.Snapshot)
		assert.Len(t, msg.CaseExtracted.Snapshot.Members, 1)
	})

	t.Run("invalid json", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte("not json")}
		assert.Error(t, msg.ParseCaseExtracted())
		assert.Nil(t, msg.CaseExtracted)
	})
}

func TestIsCaseExtracted(t *testing.T) {
	t.Run("header is authoritative", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{"type": "case.extracted"},
			Value:   []byte(`{}`),
		}
		assert.True(t, msg.IsCaseExtracted())
	})

	t.Run("body type is the fallback", func(t *testing.T) {
		msg := &IncomingMessage{Value: caseExtractedBody()}
		assert.True(t, msg.IsCaseExtracted())
	})

	t.Run("other event types are rejected", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{"type": "case.created"},
			Value:   []byte(`{"type": "case.created"}`),
		}
		assert.False(t, msg.IsCaseExtracted())
	})
}

func TestMessageAccessors(t *testing.T) {
	t.Run("ids from the parsed body", func(t *testing.T) {
		msg := &IncomingMessage{Value: caseExtractedBody()}
		require.NoError(t, msg.ParseCaseExtracted())
		assert.Equal(t, "tenant-1", msg.GetTenantID())
		assert.Equal(t, "case-1", msg.GetCaseID())
		require.NotNil(t, msg.GetSnapshot())
		assert.Equal(t, "case-1", msg.GetSnapshot().ID)
	})

	t.Run("tenant falls back to the snapshot then the header", func(t *testing.T) {
		msg := &IncomingMessage{Value: []byte(`{"type":"case.extracted","snapshot":{"id":"case-1","tenant_id":"tenant-snap"}}`)}
		require.NoError(t, msg.ParseCaseExtracted())
		assert.Equal(t, "tenant-snap", msg.GetTenantID())
		assert.Equal(t, "case-1", msg.GetCaseID())

		headerOnly := &IncomingMessage{Headers: map[string]string{"tenant_id": "tenant-hdr"}}
		assert.Equal(t, "tenant-hdr", headerOnly.GetTenantID())
	})

	t.Run("unparsed message yields empty ids", func(t *testing.T) {
		msg := &IncomingMessage{}
		assert.Equal(t, "", msg.GetCaseID())
		assert.Nil(t, msg.GetSnapshot())
	})
}
