package api

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/vk/alterflow/internal/history"
	"github.com/vk/alterflow/internal/workflow"
)

type errorResponse struct {
	Error string `json:"error"`
	// Kind names the structural failure, when there is one.
	Kind string `json:"kind,omitempty"`
	// IDs are the offending tool ids for structural failures.
	IDs []string `json:"ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding of our own response types cannot fail; nothing useful to do
	// if the client hung up mid-write.
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeStructuralError maps the workflow error taxonomy to 422 responses
// that carry the offending tool ids.
func writeStructuralError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var dup *workflow.DuplicateNodeError
	var dangling *workflow.DanglingConnectionError
	var cycle *workflow.CycleDetectedError
	var containerCycle *workflow.ContainerCycleError
	switch {
	case errors.As(err, &dup):
		resp.Kind = "duplicate_node"
		resp.IDs = []string{dup.ID}
	case errors.As(err, &dangling):
		resp.Kind = "dangling_connection"
		resp.IDs = []string{dangling.MissingID}
	case errors.As(err, &cycle):
		resp.Kind = "cycle_detected"
		resp.IDs = cycle.IDs
	case errors.As(err, &containerCycle):
		resp.Kind = "container_cycle"
		resp.IDs = containerCycle.IDs
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func isStructural(err error) bool {
	var dup *workflow.DuplicateNodeError
	var dangling *workflow.DanglingConnectionError
	var cycle *workflow.CycleDetectedError
	var containerCycle *workflow.ContainerCycleError
	return errors.As(err, &dup) || errors.As(err, &dangling) ||
		errors.As(err, &cycle) || errors.As(err, &containerCycle)
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
