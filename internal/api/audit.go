package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/gray-logic-onoff/internal/audit"
	"github.com/nerrad567/gray-logic-onoff/internal/auth"
)

// recordAudit stores an audit entry for the caller identified by claims.
// Failures are logged; they never fail the operation that triggered them.
func (s *Server) recordAudit(ctx context.Context, claims *auth.Claims, action, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	e := &audit.Entry{
		Action:     action,
		EntityType: audit.EntityInstance,
		EntityID:   entityID,
		Details:    details,
	}
	if claims != nil {
		e.Subject = claims.Subject
		e.Role = string(claims.Role)
	}
	if err := s.audit.Create(ctx, e); err != nil {
		s.logger.Warn("audit entry not recorded", "action", action, "entity_id", entityID, "error", err)
	}
}

// handleListAudit returns audit entries, newest first.
// Query parameters: action, entity_type, entity_id, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "audit trail is not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
