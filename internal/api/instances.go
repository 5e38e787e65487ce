package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-onoff/internal/audit"
	"github.com/nerrad567/gray-logic-onoff/internal/auth"
	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/instance"
)

// instanceRequest is the body of POST /instances and PUT /instances/{id}.
type instanceRequest struct {
	ID     string              `json:"id,omitempty"`
	Class  string              `json:"class,omitempty"`
	Fields configurable.Fields `json:"fields"`
}

// instanceResponse is a stored instance plus its live status.
type instanceResponse struct {
	*configurable.Instance
	Active          bool               `json:"active"`
	Status          *automation.Status `json:"status,omitempty"`
	ActivationError *Error             `json:"activation_error,omitempty"`
}

// stateRequest is the body of PUT /instances/{id}/state.
type stateRequest struct {
	State  string            `json:"state"`
	Source automation.Source `json:"source,omitempty"`
}

func (s *Server) instanceToResponse(inst *configurable.Instance) instanceResponse {
	resp := instanceResponse{Instance: inst}
	if unit, err := s.instances.Unit(inst.ID); err == nil {
		st := unit.Status()
		resp.Active = true
		resp.Status = &st
		return resp
	}
	if actErr := s.instances.ActivationError(inst.ID); actErr != nil {
		e := errorFor(actErr)
		resp.ActivationError = &e
	}
	return resp
}

// readInstanceRequest reads the body, checks it against the schema of
// class and decodes it. An empty class is taken from the body.
func (s *Server) readInstanceRequest(w http.ResponseWriter, r *http.Request, class string) (instanceRequest, string, bool) {
	var req instanceRequest

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return req, "", false
	}

	var probe struct {
		Class string `json:"class"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, "", false
	}
	if class == "" {
		class = probe.Class
	}
	if class == "" {
		writeBadRequest(w, "class is required")
		return req, "", false
	}
	if probe.Class != "" && probe.Class != class {
		writeBadRequest(w, "class cannot be changed")
		return req, "", false
	}

	if err := s.classes.ValidatePayload(class, body); err != nil {
		s.writeDomainError(w, r, err)
		return req, "", false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, "", false
	}
	return req, class, true
}

// handleListInstances returns all stored instances, optionally filtered by ?class=.
func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := s.instances.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	class := r.URL.Query().Get("class")
	out := make([]instanceResponse, 0, len(instances))
	for _, inst := range instances {
		if class != "" && inst.Class != class {
			continue
		}
		out = append(out, s.instanceToResponse(inst))
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": out, "count": len(out)})
}

// handleGetInstance returns one instance.
func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := s.instances.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.instanceToResponse(inst))
}

// handleCreateInstance validates, stores and activates a new instance.
// An instance that is stored but cannot be activated is reported with the
// build error and its instance_id.
func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	req, class, ok := s.readInstanceRequest(w, r, "")
	if !ok {
		return
	}

	inst, err := s.instances.Create(r.Context(), class, req.ID, req.Fields)
	if err == nil || errors.Is(err, instance.ErrNotActive) {
		id := req.ID
		if inst != nil {
			id = inst.ID
		}
		s.recordAudit(r.Context(), claimsFromContext(r.Context()), audit.ActionCreate, id, map[string]any{"class": class, "active": err == nil})
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/instances/"+inst.ID)
	writeJSON(w, http.StatusCreated, s.instanceToResponse(inst))
}

// handleUpdateInstance replaces an instance's fields and rebuilds its unit.
func (s *Server) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.instances.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	req, _, ok := s.readInstanceRequest(w, r, existing.Class)
	if !ok {
		return
	}
	if req.ID != "" && req.ID != id {
		writeBadRequest(w, "id in body does not match URL")
		return
	}

	inst, err := s.instances.Update(r.Context(), id, req.Fields)
	if err == nil || errors.Is(err, instance.ErrNotActive) {
		s.recordAudit(r.Context(), claimsFromContext(r.Context()), audit.ActionUpdate, id, map[string]any{"active": err == nil})
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.instanceToResponse(inst))
}

// handleDeleteInstance removes an instance and its unit.
func (s *Server) handleDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.instances.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.recordAudit(r.Context(), claimsFromContext(r.Context()), audit.ActionDelete, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleReactivate retries every inactive instance.
func (s *Server) handleReactivate(w http.ResponseWriter, r *http.Request) {
	n, err := s.instances.Reactivate(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.recordAudit(r.Context(), claimsFromContext(r.Context()), audit.ActionReactivate, "", map[string]any{"reactivated": n})
	writeJSON(w, http.StatusOK, map[string]any{"reactivated": n})
}

// liveUnit returns the unit of id. For an inactive instance the error is
// its remembered build failure, for an unknown one ErrInstanceNotFound.
func (s *Server) liveUnit(ctx context.Context, id string) (*automation.Unit, error) {
	unit, err := s.instances.Unit(id)
	if err == nil {
		return unit, nil
	}
	if !errors.Is(err, automation.ErrUnitNotFound) {
		return nil, err
	}
	if _, getErr := s.instances.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	if actErr := s.instances.ActivationError(id); actErr != nil {
		return nil, actErr
	}
	return nil, err
}

// handleGetInstanceState returns the live unit status.
func (s *Server) handleGetInstanceState(w http.ResponseWriter, r *http.Request) {
	unit, err := s.liveUnit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit.Status())
}

// handleSetInstanceState commands a unit into a state. The caller's role
// decides whether the command counts as manual or automation.
func (s *Server) handleSetInstanceState(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "bearer token required")
		return
	}

	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.State == "" {
		writeBadRequest(w, "state is required")
		return
	}

	status, err := s.commandUnit(r.Context(), claims, chi.URLParam(r, "id"), req.State, req.Source)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// commandUnit moves the live unit of id into state on behalf of claims.
// It backs both PUT /instances/{id}/state and WebSocket command messages.
func (s *Server) commandUnit(ctx context.Context, claims *auth.Claims, id, state string, requested automation.Source) (automation.Status, error) {
	source, err := auth.CommandSource(claims.Role, requested)
	if err != nil {
		return automation.Status{}, err
	}

	unit, err := s.liveUnit(ctx, id)
	if err != nil {
		return automation.Status{}, err
	}
	if err := unit.ChangeState(ctx, state, source); err != nil {
		return automation.Status{}, err
	}

	s.recordAudit(ctx, claims, audit.ActionCommand, id, map[string]any{"state": state, "source": string(source)})
	s.logger.Info("state commanded",
		"instance_id", id,
		"state", state,
		"source", source,
		"subject", claims.Subject,
	)
	return unit.Status(), nil
}

// handleGetInstanceHistory returns recorded state changes, newest first.
func (s *Server) handleGetInstanceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", "state history is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	id := chi.URLParam(r, "id")
	if _, err := s.instances.Get(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	entries, err := s.history.GetHistory(r.Context(), id, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
