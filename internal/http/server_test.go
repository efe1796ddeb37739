package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store/memory"
	"expensetracker/internal/tracker"
)

var today = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	n := 0
	logger := applog.New(applog.Config{Component: applog.ComponentHTTP, Output: &bytes.Buffer{}})
	st := memory.New()
	tr := tracker.New(st,
		tracker.WithLogger(logger),
		tracker.WithValidator(core.Validator{
			Now: func() time.Time { return today },
			NewID: func() string {
				n++
				return "rec-" + strconv.Itoa(n)
			},
		}))
	srv, err := NewServer(":0", tr, WithLocale("en-US"), WithLogger(logger))
	require.NoError(t, err)
	return srv, st
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values, htmx bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<form id="record-form"`)
	assert.Contains(t, body, `name="title"`)
	assert.NotContains(t, body, `id="records"`, "table hidden while empty")
	assert.NotContains(t, body, "data-alert")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, "ready", rr.Body.String())

	assert.Equal(t, int64(4), srv.Requests())
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(srv, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "show-notification")
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestCreateWithHTMX(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(srv, postForm("/expenses", url.Values{
		"kind":   {"expense"},
		"title":  {"Groceries"},
		"date":   {""},
		"amount": {"42.5"},
	}, true))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, st.Len())

	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"record:added":{"id":"rec-1"}`)
	assert.Contains(t, trigger, `"form:reset"`)

	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), `<section id="app">`), "partial only")
	assert.Contains(t, body, `id="records"`)
	assert.Contains(t, body, "<td>Groceries</td>")
	assert.Contains(t, body, "<td>10/17/2026</td>")
	assert.Contains(t, body, ">42.50</td>")
	assert.Contains(t, body, `name="title" value=""`, "form reset after success")
	assert.Contains(t, body, `name="date" value="2026-10-17"`)
}

func TestCreateFailureWithHTMX(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(srv, postForm("/expenses", url.Values{"title": {"ab"}, "amount": {"10"}}, true))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, 0, st.Len())

	msg := "Failed to add expense due to Title must be between 3 and 25 characters long."
	assert.Equal(t, `<div class="error">`+msg+`</div>`, rr.Body.String())
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"show-notification"`)
	assert.Contains(t, trigger, `"type":"error"`)
	assert.Contains(t, trigger, msg)
}

func TestCreateWithoutHTMX(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(srv, postForm("/expenses", url.Values{"title": {"Salary"}, "amount": {"0"}, "kind": {"income"}}, false))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "data-alert>Failed to add expense due to Amount must be greater than 0.</div>")
	assert.Contains(t, body, `name="title" value="Salary"`, "draft kept after failure")
	assert.Contains(t, body, `<option value="income" selected>`)
	assert.Equal(t, 0, st.Len())

	rr = do(srv, postForm("/expenses", url.Values{"amount": {"1200"}}, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	require.Equal(t, 1, st.Len())
}

func TestCreateRejectsBadInput(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(srv, postForm("/expenses", url.Values{"kind": {"transfer"}, "title": {"Groceries"}, "amount": {"1"}}, true))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid kind")
	assert.Equal(t, 0, st.Len())

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/expenses", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "POST", rr.Header().Get("Allow"))
}

func TestRemove(t *testing.T) {
	srv, st := newTestServer(t)
	for _, title := range []string{"Alpha", "Bravo", "Charlie"} {
		rr := do(srv, postForm("/expenses", url.Values{"title": {title}, "amount": {"1"}}, true))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/expenses/rec-2", nil)
	req.Header.Set("HX-Request", "true")
	rr := do(srv, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"record:removed":{"id":"rec-2"}`)
	assert.NotContains(t, rr.Body.String(), `id="record-rec-2"`)
	assert.Contains(t, rr.Body.String(), `id="record-rec-1"`)
	assert.Equal(t, 2, st.Len())

	// unknown ids are a no-op
	rr = do(srv, postForm("/expenses/remove", url.Values{"id": {"rec-2"}}, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, 2, st.Len())

	rr = do(srv, postForm("/expenses/remove", url.Values{"id": {"rec-1"}}, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, 1, st.Len())

	rr = do(srv, postForm("/expenses/remove", url.Values{}, false))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(srv, httptest.NewRequest(http.MethodGet, "/expenses/rec-3", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "DELETE", rr.Header().Get("Allow"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "  Gro\tceries ", sanitizeInput("  Gro\x00\tceries\x7f "))
}

type brokenStore struct{ *memory.Store }

func (brokenStore) Remove(context.Context, string) (bool, error) {
	return false, errors.New("disk gone")
}

func TestRemoveStoreFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := applog.New(applog.Config{Output: &logs})
	tr := tracker.New(brokenStore{memory.New()}, tracker.WithLogger(logger))
	srv, err := NewServer(":0", tr, WithLogger(logger))
	require.NoError(t, err)

	rr := do(srv, httptest.NewRequest(http.MethodDelete, "/expenses/abc", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to remove record")
	assert.Contains(t, logs.String(), "Remove failed")
	assert.Contains(t, logs.String(), "record_id=abc")
}
