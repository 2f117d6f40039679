// Package api exposes the workflow conversion service over HTTP. Handlers
// are thin: parse the request, call the domain packages, map errors to
// status codes.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/vk/alterflow/internal/convert"
	"github.com/vk/alterflow/internal/ctxlog"
	"github.com/vk/alterflow/internal/history"
	"github.com/vk/alterflow/internal/llm"
	"github.com/vk/alterflow/internal/session"
	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// maxUploadBytes caps workflow uploads; .yxmd files are small XML.
const maxUploadBytes = 16 << 20

// GeneratorFactory builds a generation backend for one conversion request.
// The indirection lets tests substitute a canned generator and lets callers
// supply a per-request API key.
type GeneratorFactory func(apiKey string) (llm.Generator, error)

// Server holds the handler dependencies.
type Server struct {
	sessions     *session.Registry
	hist         *history.Store
	newGenerator GeneratorFactory
	maxRows      int
}

// Options configures NewHandler.
type Options struct {
	Sessions *session.Registry
	History  *history.Store
	// NewGenerator builds the LLM backend per conversion request.
	NewGenerator GeneratorFactory
	// MaxHistoryRows prunes the history log after each append; <= 0 disables
	// pruning.
	MaxHistoryRows int
	// CORSOrigins is passed to the cors middleware; empty allows any origin.
	CORSOrigins []string
}

// NewHandler builds the routed, CORS-wrapped HTTP handler.
func NewHandler(opts Options) http.Handler {
	s := &Server{
		sessions:     opts.Sessions,
		hist:         opts.History,
		newGenerator: opts.NewGenerator,
		maxRows:      opts.MaxHistoryRows,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/workflows", s.handleUpload)
	mux.HandleFunc("GET /api/workflows/{id}", s.handleWorkflow)
	mux.HandleFunc("GET /api/workflows/{id}/sequence", s.handleSequence)
	mux.HandleFunc("GET /api/workflows/{id}/containers/{tool}/children", s.handleChildren)
	mux.HandleFunc("POST /api/workflows/{id}/convert", s.handleConvert)
	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("DELETE /api/history", s.handleHistoryClear)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryGet)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryDelete)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// toolSummary is the per-tool view returned by upload and workflow lookups.
type toolSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ContainerID string `json:"container_id,omitempty"`
	Annotation  string `json:"annotation,omitempty"`
}

type connectionView struct {
	SourceID   string `json:"source_id"`
	TargetID   string `json:"target_id"`
	SourcePort string `json:"source_port,omitempty"`
	TargetPort string `json:"target_port,omitempty"`
}

type workflowResponse struct {
	SessionID   string           `json:"session_id"`
	Name        string           `json:"name"`
	ToolCount   int              `json:"tool_count"`
	Tools       []toolSummary    `json:"tools"`
	Connections []connectionView `json:"connections"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("workflow")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing workflow file: %w", err))
		return
	}
	defer file.Close()

	doc, err := yxmd.Parse(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc.Name = strings.TrimSuffix(header.Filename, ".yxmd")

	g, err := workflow.Build(doc.Tools, doc.Connections)
	if err != nil {
		writeStructuralError(w, err)
		return
	}

	sess := s.sessions.Add(doc.Name, doc, g)
	ctxlog.FromContext(r.Context()).Info("workflow uploaded",
		"session_id", sess.ID, "name", doc.Name, "tools", g.Len())
	writeJSON(w, http.StatusCreated, workflowView(sess))
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workflowView(sess))
}

func workflowView(sess *session.Workflow) workflowResponse {
	resp := workflowResponse{
		SessionID: sess.ID,
		Name:      sess.Name,
		ToolCount: sess.Graph.Len(),
	}
	for _, c := range sess.Graph.Connections() {
		resp.Connections = append(resp.Connections, connectionView{
			SourceID:   c.SourceID,
			TargetID:   c.TargetID,
			SourcePort: c.SourcePort,
			TargetPort: c.TargetPort,
		})
	}
	for _, id := range workflow.SortIDs(sess.Graph.NodeIDs()) {
		n, _ := sess.Graph.Node(id)
		t := toolSummary{ID: n.ID, Type: n.Type, ContainerID: n.ContainerID}
		if a, ok := n.Configuration[yxmd.ConfigAnnotation].(string); ok {
			t.Annotation = a
		}
		resp.Tools = append(resp.Tools, t)
	}
	return resp
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var scope map[string]struct{}
	if raw := r.URL.Query().Get("tools"); raw != "" {
		scope = make(map[string]struct{})
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				scope[id] = struct{}{}
			}
		}
	}

	order, err := workflow.Sequence(sess.Graph, scope)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sequence": order})
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	toolID := r.PathValue("tool")
	transitive := r.URL.Query().Get("transitive") == "true"

	children, err := workflow.ChildrenOf(sess.Graph, toolID, transitive)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	ids := make([]string, 0, len(children))
	for id := range children {
		ids = append(ids, id)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"container":  toolID,
		"children":   workflow.SortIDs(ids),
		"selectable": yxmd.SelectableChildren(sess.Graph, children),
	})
}

type convertRequest struct {
	Target       string   `json:"target"`
	Mode         string   `json:"mode"`
	Tools        []string `json:"tools"`
	Instructions string   `json:"instructions"`
	APIKey       string   `json:"api_key"`
}

type convertResponse struct {
	HistoryID int64    `json:"history_id,omitempty"`
	Code      string   `json:"code"`
	Prompt    string   `json:"prompt"`
	Sequence  []string `json:"sequence"`
	Guide     string   `json:"guide,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req convertRequest
	if !readJSON(w, r, &req) {
		return
	}
	target, mode := convert.Target(req.Target), convert.Mode(req.Mode)
	if (target != convert.TargetPython && target != convert.TargetSQL) ||
		(mode != convert.ModeDirect && mode != convert.ModeAdvanced) {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("unsupported conversion: target %q, mode %q", req.Target, req.Mode))
		return
	}

	gen, err := s.newGenerator(req.APIKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	svc := convert.NewService(gen)
	res, err := svc.Run(r.Context(), target, mode, convert.Request{
		Graph:        sess.Graph,
		ToolIDs:      req.Tools,
		Instructions: req.Instructions,
	})
	if err != nil {
		if isStructural(err) {
			writeStructuralError(w, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	resp := convertResponse{
		Code:     res.Code,
		Prompt:   res.Prompt,
		Sequence: res.Sequence,
		Guide:    res.Guide,
	}
	resp.HistoryID = s.record(r, req, sess.Name, res)
	writeJSON(w, http.StatusOK, resp)
}

// record appends the conversion to history. Failures are logged, not
// surfaced: the user already has their code.
func (s *Server) record(r *http.Request, req convertRequest, name string, res *convert.Result) int64 {
	if s.hist == nil {
		return 0
	}
	ctx := r.Context()
	id, err := s.hist.Append(ctx, history.Record{
		Kind:     req.Target + "-" + req.Mode,
		Workflow: name,
		ToolIDs:  res.Sequence,
		Output:   res.Code,
		Prompt:   res.Prompt,
	})
	if err != nil {
		ctxlog.FromContext(ctx).Error("failed to record generation", "error", err)
		return 0
	}
	if s.maxRows > 0 {
		if _, err := s.hist.Prune(ctx, s.maxRows); err != nil {
			ctxlog.FromContext(ctx).Error("failed to prune history", "error", err)
		}
	}
	return id
}

type historyEntry struct {
	ID        int64    `json:"id"`
	CreatedAt string   `json:"created_at"`
	Kind      string   `json:"kind"`
	Workflow  string   `json:"workflow"`
	ToolIDs   []string `json:"tool_ids,omitempty"`
	Output    string   `json:"output,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.hist.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	entries := make([]historyEntry, 0, len(recs))
	for _, rec := range recs {
		// The listing omits the payloads; Get returns them.
		entries = append(entries, historyEntry{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			Kind:      rec.Kind,
			Workflow:  rec.Workflow,
			ToolIDs:   rec.ToolIDs,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"generations": entries})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if _, err := s.hist.Prune(r.Context(), 0); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := historyID(w, r)
	if !ok {
		return
	}
	rec, err := s.hist.Get(r.Context(), id)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyEntry{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		Kind:      rec.Kind,
		Workflow:  rec.Workflow,
		ToolIDs:   rec.ToolIDs,
		Output:    rec.Output,
		Prompt:    rec.Prompt,
	})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := historyID(w, r)
	if !ok {
		return
	}
	if err := s.hist.Delete(r.Context(), id); err != nil {
		writeHistoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} path segment; on failure it has already written
// the 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Workflow, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown workflow session %q", r.PathValue("id")))
		return nil, false
	}
	return sess, true
}

func historyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid history id %q", r.PathValue("id")))
		return 0, false
	}
	return id, true
}
