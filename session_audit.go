package goFieldOps

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLogin              = "login"
	auditEventLogout             = "logout"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshFailure     = "refresh_failure"
	auditEventRequestQueued      = "request_queued"
	auditEventRequestReplayed    = "request_replayed"
	auditEventReplayUnauthorized = "replay_unauthorized"
	auditEventStaleTokenReplay   = "stale_token_replay"
	auditEventForcedLogout       = "forced_logout"
)

// AuditErrorCode is the stable error classification carried in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrNoRefreshToken AuditErrorCode = "no_refresh_token"
	auditErrRefreshFailed  AuditErrorCode = "refresh_failed"
	auditErrStore          AuditErrorCode = "store_unavailable"
	auditErrCanceled       AuditErrorCode = "canceled"
	auditErrInternal       AuditErrorCode = "internal_error"
)

// requestInfo identifies the logical request an event belongs to.
type requestInfo struct {
	id     string
	method string
	path   string
}

func (s *Session) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	info requestInfo,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: info.id,
		Method:    info.method,
		Path:      info.path,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoRefreshToken):
		return auditErrNoRefreshToken
	case errors.Is(err, ErrRefreshFailed):
		return auditErrRefreshFailed
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStore
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	default:
		return auditErrInternal
	}
}
