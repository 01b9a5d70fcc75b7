// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/authenticated"
	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/i18n"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/views"
)

const testNonce = "test-nonce"

func TestMain(m *testing.M) {
	if err := i18n.SetupFS(fstest.MapFS{"po/th.po": {Data: []byte("")}}); err != nil {
		panic(err)
	}

	if err := config.PasetoValidator.LoadSecretKeyFromHex(authenticated.NewSecretKeyHex()); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// setupConfig resets config.Global to its defaults for one test.
// Tests using it share config.Global and must not run in parallel.
func setupConfig(t *testing.T) {
	t.Helper()

	saved := config.Global

	config.Global = config.ServerConfig{}
	config.Global.SetDefaults()

	t.Cleanup(func() { config.Global = saved })
}

// withContext attaches a request context holding testNonce.
func withContext(r *http.Request) *http.Request {
	r = r.WithContext(request_context.WithRequestContext(r.Context(), r))
	request_context.FromRequest(r).FormNonce = testNonce

	return r
}

func newFormRequest(form url.Values) *http.Request {
	if !form.Has(views.FieldCSRF) {
		form.Set(views.FieldCSRF, config.PasetoValidator.SignFormToken(testNonce))
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return withContext(r)
}

func parsePage(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)

	return doc
}

// fakeService answers /api/translate style requests with translated.
func fakeService(t *testing.T, status int, body string) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	config.Global.Frontend.Backend = config.ServiceBackend
	config.Global.Service.URL = server.URL
}

func TestIndexPage(t *testing.T) {
	setupConfig(t)
	config.Global.Frontend.Fields = 2

	rr := httptest.NewRecorder()
	r := withContext(httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, IndexPage(rr, r))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	doc := parsePage(t, rr)
	assert.Equal(t, 2, doc.Find("textarea[name=source]").Length())

	token, ok := doc.Find("input[name=csrf]").Attr("value")
	require.True(t, ok)
	assert.NoError(t, config.PasetoValidator.VerifyFormToken(token, testNonce))
}

func TestIndexActionTranslate(t *testing.T) {
	setupConfig(t)
	fakeService(t, http.StatusOK, `{"translatedHtml":"<p><strong>Hello</strong></p>"}`)

	rr := httptest.NewRecorder()
	r := newFormRequest(url.Values{
		views.FieldSource: {"<p><strong>สวัสดี</strong></p>"},
		views.FieldAction: {views.ActionTranslate},
	})

	require.NoError(t, IndexAction(rr, r))

	doc := parsePage(t, rr)
	target, _ := doc.Find("input[name=target]").Attr("value")
	assert.Equal(t, "<p><strong>Hello</strong></p>", target)
	assert.Equal(t, "<p><strong>สวัสดี</strong></p>", doc.Find("textarea[name=source]").Text())
	assert.Zero(t, doc.Find("p.error").Length())
}

func TestIndexActionTranslateFailure(t *testing.T) {
	setupConfig(t)
	fakeService(t, http.StatusInternalServerError, "model overloaded")

	rr := httptest.NewRecorder()
	r := newFormRequest(url.Values{
		views.FieldSource: {"<p>สวัสดี</p>"},
		views.FieldTarget: {"<p>Old</p>"},
		views.FieldAction: {views.ActionTranslate},
	})

	require.NoError(t, IndexAction(rr, r))

	doc := parsePage(t, rr)
	assert.Equal(t, "Translation failed: model overloaded", doc.Find("p.error").Text())

	target, _ := doc.Find("input[name=target]").Attr("value")
	assert.Equal(t, "<p>Old</p>", target, "a failed field keeps its previous content")

	_, disabled := doc.Find("button.trigger").Attr("disabled")
	assert.False(t, disabled)
}

func TestIndexActionFormat(t *testing.T) {
	setupConfig(t)

	rr := httptest.NewRecorder()
	r := newFormRequest(url.Values{
		views.FieldSource: {"<p>ab</p>"},
		views.FieldAction: {views.ActionBold + ":0"},
		views.FieldFrom:   {"0"},
		views.FieldTo:     {"1"},
	})

	require.NoError(t, IndexAction(rr, r))

	source := parsePage(t, rr).Find("textarea[name=source]").Text()
	assert.Equal(t, "<p><strong>a</strong>b</p>", source)
}

func TestIndexActionFormatWholeDocument(t *testing.T) {
	setupConfig(t)

	rr := httptest.NewRecorder()
	r := newFormRequest(url.Values{
		views.FieldSource: {"<p>ab</p>"},
		views.FieldAction: {views.ActionItalic + ":0"},
	})

	require.NoError(t, IndexAction(rr, r))

	source := parsePage(t, rr).Find("textarea[name=source]").Text()
	assert.Equal(t, "<p><em>ab</em></p>", source)
}

func TestIndexActionRejected(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{
			name:   "Expired token",
			form:   url.Values{views.FieldCSRF: {"bogus"}, views.FieldAction: {views.ActionTranslate}},
			status: http.StatusForbidden,
		},
		{
			name:   "Missing field",
			form:   url.Values{views.FieldAction: {views.ActionBold + ":5"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "Unknown action",
			form:   url.Values{views.FieldAction: {"underline"}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupConfig(t)

			err := IndexAction(httptest.NewRecorder(), newFormRequest(tt.form))

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)

			var userErr *i18n.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		action string
		field  int
	}{
		{raw: "translate", action: "translate", field: 0},
		{raw: "bold:2", action: "bold", field: 2},
		{raw: "italic:x", action: "italic", field: -1},
		{raw: "", action: "", field: 0},
	}

	for _, tt := range tests {
		action, field := parseAction(tt.raw)
		assert.Equal(t, tt.action, action, tt.raw)
		assert.Equal(t, tt.field, field, tt.raw)
	}
}

func TestWorkspaceFromFormIgnoresExtraFields(t *testing.T) {
	setupConfig(t)

	r := newFormRequest(url.Values{views.FieldSource: {"<p>ก</p>", "<p>ข</p>"}})
	require.NoError(t, r.ParseForm())

	ws := workspaceFromForm(r)

	require.Equal(t, 1, ws.Len())
	assert.Equal(t, "<p>ก</p>", ws.Field(0).Source.GetContent())
}

// fakeGemini serves generateContent with the given status and body.
func fakeGemini(t *testing.T, status int, body string) {
	t.Helper()

	wantPath := "/models/" + config.Global.Gemini.Model + ":generateContent"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	config.Global.Gemini.Endpoint = server.URL
	config.Global.Gemini.APIKey = "test-key"
}

func apiRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	return withContext(r)
}

func TestAPITranslate(t *testing.T) {
	setupConfig(t)
	fakeGemini(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"<p><em>Hello</em></p>"}]}}]}`)

	rr := httptest.NewRecorder()

	require.NoError(t, APITranslate(rr, apiRequest(`{"originalHtml":"<p><em>สวัสดี</em></p>"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "<p><em>Hello</em></p>", gjson.Get(rr.Body.String(), "translatedHtml").String())
}

func TestAPITranslateErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		apiKey   bool
		status   int
		contains string
	}{
		{name: "Invalid JSON", body: `{"originalHtml":`, apiKey: true, status: http.StatusBadRequest, contains: "originalHtml"},
		{name: "Wrong type", body: `{"originalHtml":3}`, apiKey: true, status: http.StatusBadRequest, contains: "originalHtml"},
		{name: "Empty", body: `{"originalHtml":""}`, apiKey: true, status: http.StatusBadRequest, contains: "nothing to translate"},
		{name: "Missing API key", body: `{"originalHtml":"<p>ก</p>"}`, status: http.StatusServiceUnavailable, contains: "PLAE_GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupConfig(t)

			if tt.apiKey {
				config.Global.Gemini.APIKey = "test-key"
			}

			rr := httptest.NewRecorder()

			err := APITranslate(rr, apiRequest(tt.body))

			require.Error(t, err)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestAPITranslateTooLarge(t *testing.T) {
	setupConfig(t)

	body := `{"originalHtml":"` + strings.Repeat("ก", translator.MaxServiceRequestBody) + `"}`
	rr := httptest.NewRecorder()

	err := APITranslate(rr, apiRequest(body))

	var maxErr *http.MaxBytesError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "The request body is too large.", rr.Body.String())
}

func TestAPITranslateUpstreamStatus(t *testing.T) {
	setupConfig(t)
	fakeGemini(t, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`)

	rr := httptest.NewRecorder()

	require.Error(t, APITranslate(rr, apiRequest(`{"originalHtml":"<p>ก</p>"}`)))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "quota exceeded")
}

func TestErrorMessage(t *testing.T) {
	setupConfig(t)

	r := withContext(httptest.NewRequest(http.MethodGet, "/", nil))
	userErr := i18n.NewUserError(r.Context(), "Unknown form action.")
	internal := errors.New("dial tcp: connection refused")

	assert.Empty(t, errorMessage(nil))
	assert.Equal(t, "Unknown form action.", errorMessage(NewHTTPError(http.StatusBadRequest, userErr)))
	assert.Empty(t, errorMessage(internal))

	config.Global.Development.InDevelopment = true

	assert.Equal(t, internal.Error(), errorMessage(internal))
}

func TestAboutPage(t *testing.T) {
	setupConfig(t)

	rr := httptest.NewRecorder()

	require.NoError(t, AboutPage(rr, withContext(httptest.NewRequest(http.MethodGet, "/about", nil))))

	doc := parsePage(t, rr)
	assert.Contains(t, doc.Find("dl.about-list").Text(), string(config.ServiceBackend))
}
