package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jhwan-dev/licensegate/internal/registration"
)

// registerRequest is the request body for POST /register and POST /validate.
type registerRequest struct {
	ComputerID string `json:"computer_id"`
}

// actionRequest is the request body for POST /admin/action/{id}.
type actionRequest struct {
	Action string `json:"action"`
}

// handleRegister records a licence request for a machine.
//
// A new machine gets 201 and a Pending registration; a machine that is
// already known, whatever its status, gets 200. Both outcomes return the
// current status so the client can act on it immediately.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	reg, created, err := s.service.Register(r.Context(), req.ComputerID)
	if err != nil {
		if errors.Is(err, registration.ErrMissingComputerID) {
			writeBadRequest(w, "computer_id is required")
			return
		}
		s.logger.Error("registration failed", "error", err)
		writeInternalError(w, "failed to process registration")
		return
	}

	status := http.StatusOK
	message := "machine already registered"
	if created {
		status = http.StatusCreated
		message = "registration request received"
	}

	writeJSON(w, status, map[string]any{
		"message": message,
		"status":  reg.Status,
	})
}

// handleValidate reports the current licence status for a machine.
//
// An unknown machine is reported with 404 and a literal "Not Found" status
// so clients can treat the status field uniformly.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	status, err := s.service.Status(r.Context(), req.ComputerID)
	switch {
	case errors.Is(err, registration.ErrMissingComputerID):
		writeBadRequest(w, "computer_id is required")
	case errors.Is(err, registration.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "Not Found"})
	case err != nil:
		s.logger.Error("validation lookup failed", "error", err)
		writeInternalError(w, "failed to look up registration")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"status": status})
	}
}

// handleListUsers returns all registrations, newest first.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	regs, err := s.service.List(r.Context())
	if err != nil {
		s.logger.Error("listing registrations failed", "error", err)
		writeInternalError(w, "failed to list registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// handleListRequests returns pending registrations, oldest request first.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	regs, err := s.service.ListPending(r.Context())
	if err != nil {
		s.logger.Error("listing pending registrations failed", "error", err)
		writeInternalError(w, "failed to list pending registrations")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// handleAction applies an admin decision (Approve or Reject) to a pending
// registration. A successful response carries the decided row, including
// the approval timestamp just written.
//
// A decision against a registration that is missing or already decided gets
// a single 404; the two cases are deliberately not distinguished.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	reg, err := s.service.Decide(r.Context(), id, registration.Action(req.Action))
	switch {
	case errors.Is(err, registration.ErrInvalidAction):
		writeBadRequest(w, "action must be Approve or Reject")
	case errors.Is(err, registration.ErrNotPending):
		writeNotFound(w, "registration not found or already processed")
	case err != nil:
		s.logger.Error("decision failed", "registration_id", id, "error", err)
		writeInternalError(w, "failed to process decision")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      fmt.Sprintf("registration %d %s", id, strings.ToLower(string(reg.Status))),
			"status":       reg.Status,
			"registration": reg,
		})
	}
}

// handleDeleteUser removes a registration entirely. The machine may register
// again afterwards.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := s.service.Remove(r.Context(), id)
	switch {
	case errors.Is(err, registration.ErrNotFound):
		writeNotFound(w, "registration not found")
	case err != nil:
		s.logger.Error("removal failed", "registration_id", id, "error", err)
		writeInternalError(w, "failed to remove registration")
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("registration %d removed", id),
		})
	}
}

// handleStats returns per-status registration counts for the admin console.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", "error", err)
		writeInternalError(w, "failed to count registrations")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseID extracts the {id} URL parameter, writing a 400 response on failure.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
