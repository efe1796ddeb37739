package http

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/tracker"
)

type draftView struct {
	Kind   string
	Title  string
	Date   string
	Amount string
}

func newDraftView(d core.Draft) draftView {
	v := draftView{Kind: d.Kind.String()}
	if d.Title != nil {
		v.Title = *d.Title
	}
	if d.Date != nil {
		v.Date = d.Date.ISO()
	}
	if d.Amount != nil && !math.IsNaN(*d.Amount) {
		v.Amount = strconv.FormatFloat(*d.Amount, 'f', -1, 64)
	}
	return v
}

type pageData struct {
	Lang    string
	Alert   string
	Draft   draftView
	Records []core.Record
}

func (s *Server) loadPage(ctx context.Context, alert string) (pageData, error) {
	records, err := s.tracker.List(ctx)
	if err != nil {
		return pageData{}, err
	}
	return pageData{
		Lang:    s.formatter.Locale(),
		Alert:   alert,
		Draft:   newDraftView(s.tracker.Draft()),
		Records: records,
	}, nil
}

// render executes the named template with the current draft and records.
func (s *Server) render(ctx context.Context, name, alert string) ([]byte, error) {
	data, err := s.loadPage(ctx, alert)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// respond renders the htmx partial or the full page into b and writes it.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, alert string) {
	name := "index.html"
	if isHTMX(r) {
		name = "app"
	}
	body, err := s.render(r.Context(), name, alert)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": name})
		InternalServerError("Failed to render page").Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	s.respond(w, r, NewHTMXResponse(), "")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Invalid form data", applog.FieldError, err)
		BadRequestError("Invalid form data").Write(w)
		return
	}

	out := s.tracker.SubmitFields(ctx, postedFields(r))
	if errors.Is(out.Err, tracker.ErrInvalidField) {
		BadRequestError(out.Alert).Write(w)
		return
	}
	if !out.OK() {
		if isHTMX(r) {
			ErrorResponse(http.StatusUnprocessableEntity, out.Alert).
				TriggerErrorNotification(out.Alert).
				Write(w)
			return
		}
		s.respond(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), out.Alert)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.respond(w, r, NewHTMXResponse().
		TriggerRecordAdded(out.Record.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Record added"), "")
}

func (s *Server) handleRemoveForm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.remove(w, r, strings.TrimSpace(sanitizeInput(r.PostFormValue("id"))))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	s.remove(w, r, strings.TrimSpace(r.PathValue("id")))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		BadRequestError("Missing record id").Write(w)
		return
	}
	if err := s.tracker.Remove(r.Context(), id); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Remove failed", err, applog.ComponentHTTP, applog.OpDelete,
			applog.LogFields{applog.FieldRecordID: id})
		InternalServerError("Failed to remove record").Write(w)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.respond(w, r, NewHTMXResponse().TriggerRecordRemoved(id), "")
}
