package sealsession

import (
	"context"
	"time"

	"github.com/marcwael/sealsession/session"
)

const (
	auditEventSessionSaved     = "session_saved"
	auditEventSessionRefreshed = "session_refreshed"
	auditEventSessionCleared   = "session_cleared"
	auditEventUnsealRejected   = "unseal_rejected"
	auditEventClientUnavailable = "client_factory_failed"
	auditEventRefreshFailed    = "refresh_failed"
	auditEventSealFailed       = "seal_failed"
)

func (s *Store) emitAudit(ctx context.Context, eventType string, subject string, success bool, opErr error, metadata map[string]string) {
	if s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		RequestID: requestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	s.audit.Emit(ctx, event)
}

// subjectOf pulls the provider's subject claim out of the session profile
// for audit attribution. Missing or non-string claims yield "".
func subjectOf(sess *session.Session) string {
	if sess == nil || sess.User == nil {
		return ""
	}

	sub, _ := sess.User["sub"].(string)
	return sub
}
