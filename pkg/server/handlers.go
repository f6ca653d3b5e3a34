package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stacktile/pkg/buildinfo"
	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/pipeline"
	"github.com/matzehuels/stacktile/pkg/scene"
	"github.com/matzehuels/stacktile/pkg/state"
)

// Pane actions accepted by POST /v1/workspaces/{key}/panes/{action}.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionExpand   = "expand"
	ActionShrink   = "shrink"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// PanesRequest is the body of PUT /v1/workspaces/{key}/panes.
type PanesRequest struct {
	Layout string             `json:"layout,omitempty"`
	Panes  *layout.PaneConfig `json:"panes"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, layout.Registered())
}

func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	sc, err := scene.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes), scene.FormatJSON)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		a, err := s.runner.Arrange(r.Context(), sc, pipeline.Options{Refresh: q.Has("refresh")})
		if err != nil {
			writeError(w, r, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	opts := pipeline.Options{
		Refresh:  q.Has("refresh"),
		Formats:  []string{format},
		View:     q.Get("view"),
		Detailed: q.Has("detailed"),
	}
	if mw := q.Get("max_width"); mw != "" {
		v, err := strconv.ParseFloat(mw, 64)
		if err != nil {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "max_width %q is not a number", mw))
			return
		}
		opts.MaxWidth = v
	}
	if q.Get("labels") == "false" {
		labels := false
		opts.Labels = &labels
	}
	opts.SetRenderDefaults()

	result, err := s.runner.Execute(r.Context(), sc, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "list workspaces"))
		return
	}
	if recs == nil {
		recs = []state.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetPanes(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidateWorkspaceKey(key); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	rec, err := state.Load(r.Context(), s.store, key)
	if err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "load workspace %s", key))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutPanes(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req PanesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode panes request"))
		return
	}
	if req.Panes == nil {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "panes is required"))
		return
	}

	rec := state.NewRecord(key)
	if req.Layout != "" {
		rec.Layout = req.Layout
	}
	rec.Panes = *req.Panes
	if err := rec.Validate(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Set(r.Context(), rec); err != nil {
		writeError(w, r, s.logger, storeError(err, "store workspace %s", key))
		return
	}

	stored, err := state.Load(r.Context(), s.store, key)
	if err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "load workspace %s", key))
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeletePanes(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidateWorkspaceKey(key); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Delete(r.Context(), key); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "delete workspace %s", key))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePaneAction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	action := chi.URLParam(r, "action")

	step := s.step
	if v := r.URL.Query().Get("step"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "step %q is not a number", v))
			return
		}
		if err := errors.ValidateRatio(parsed); err != nil {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidRatio, "step %v must be in [0, 1]", parsed))
			return
		}
		step = parsed
	}

	var fn func(layout.PanedLayout) error
	switch action {
	case ActionIncrease:
		fn = func(p layout.PanedLayout) error { p.IncreaseMainPaneCount(); return nil }
	case ActionDecrease:
		fn = func(p layout.PanedLayout) error { p.DecreaseMainPaneCount(); return nil }
	case ActionExpand:
		fn = func(p layout.PanedLayout) error { layout.ExpandMainPane(p, step); return nil }
	case ActionShrink:
		fn = func(p layout.PanedLayout) error { layout.ShrinkMainPane(p, step); return nil }
	default:
		writeError(w, r, s.logger, errors.New(errors.ErrCodeNotFound, "unknown pane action %q", action))
		return
	}

	rec, err := state.Mutate(r.Context(), s.store, key, fn)
	if err != nil {
		writeError(w, r, s.logger, storeError(err, "update workspace %s", key))
		return
	}
	s.logger.Info("panes updated",
		"workspace", key,
		"action", action,
		"count", rec.Panes.MainPaneCount,
		"ratio", rec.Panes.MainPaneRatio)
	writeJSON(w, http.StatusOK, rec)
}

// storeError keeps coded errors and marks anything else internal.
func storeError(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// writeError maps err to a status code. Internal errors are logged and
// their cause is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := errors.HTTPStatus(err)
	body := ErrorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
		body = ErrorBody{Code: errors.ErrCodeInternal, Message: "internal error"}
	}
	writeJSON(w, status, body)
}
