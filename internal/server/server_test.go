package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/matrixplan-go/internal/config"
	"github.com/ukaji3/matrixplan-go/internal/fixture"
	"github.com/ukaji3/matrixplan-go/internal/legacy"
	"github.com/xuri/excelize/v2"
)

type fakeLegacy struct {
	out    []byte
	err    error
	called int
	name   string
}

func (f *fakeLegacy) Convert(_ context.Context, _ []byte, name string) ([]byte, error) {
	f.called++
	f.name = name
	return f.out, f.err
}

func billingDeck() []byte {
	return fixture.Build(fixture.Deck{Slides: []fixture.Slide{{
		Title: "This is the compliance matrix that has been applied to Billing",
		Tables: []fixture.Table{{
			fixture.Row("Flag", "Approved", "Not Approved"),
			fixture.Row("Is MFA enforced?", "Has answered Yes to config", "Has answered No or Question Unanswered"),
		}},
	}}})
}

func newTestServer(t *testing.T, cfg *config.Config, lc LegacyConverter) (*Server, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var logs bytes.Buffer
	s := New(cfg, zerolog.New(&logs), lc)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return s, &logs
}

func upload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestConvertPPTX(t *testing.T) {
	s, logs := newTestServer(t, nil, &fakeLegacy{})
	rec := serve(s, upload(t, "file", "Billing.PPTX", billingDeck()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Billing_test_sheet_20260102_150405.xlsx"`, rec.Header().Get("Content-Disposition"))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Billing", "C9")
	require.NoError(t, err)
	assert.Equal(t, "Yes", v)

	out := logs.String()
	assert.Contains(t, out, `"filename":"Billing.PPTX"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"request_id":"`+rec.Header().Get(RequestIDHeader)+`"`)
}

func TestConvertRejectsInput(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		detail string
	}{
		{
			name:   "unsupported extension",
			req:    func(t *testing.T) *http.Request { return upload(t, "file", "matrix.pdf", []byte("%PDF")) },
			status: http.StatusBadRequest,
			detail: msgUnsupported,
		},
		{
			name:   "no extension",
			req:    func(t *testing.T) *http.Request { return upload(t, "file", "pptx", []byte("x")) },
			status: http.StatusBadRequest,
			detail: msgUnsupported,
		},
		{
			name:   "empty body",
			req:    func(t *testing.T) *http.Request { return upload(t, "file", "empty.pptx", nil) },
			status: http.StatusBadRequest,
			detail: msgEmpty,
		},
		{
			name:   "wrong field",
			req:    func(t *testing.T) *http.Request { return upload(t, "upload", "deck.pptx", billingDeck()) },
			status: http.StatusBadRequest,
			detail: msgMissingFile,
		},
		{
			name:   "not a zip",
			req:    func(t *testing.T) *http.Request { return upload(t, "file", "fake.pptx", []byte("hello")) },
			status: http.StatusInternalServerError,
			detail: "Conversion error: not a pptx presentation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := &fakeLegacy{}
			s, _ := newTestServer(t, nil, lc)
			rec := serve(s, tt.req(t))

			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, strings.HasPrefix(detail(t, rec), tt.detail), "detail %q", rec.Body.String())
			assert.Zero(t, lc.called)
		})
	}
}

func TestConvertTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxUploadBytes = 1024
	s, _ := newTestServer(t, cfg, &fakeLegacy{})

	rec := serve(s, upload(t, "file", "big.pptx", bytes.Repeat([]byte("x"), 64*1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, msgTooLarge, detail(t, rec))
}

func TestConvertLegacy(t *testing.T) {
	t.Run("converted through LibreOffice", func(t *testing.T) {
		lc := &fakeLegacy{out: billingDeck()}
		s, _ := newTestServer(t, nil, lc)
		rec := serve(s, upload(t, "file", "old.ppt", []byte{0xD0, 0xCF, 0x11, 0xE0}))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, lc.called)
		assert.Equal(t, "old.ppt", lc.name)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="old_test_sheet_`)
	})

	t.Run("zip content skips conversion", func(t *testing.T) {
		lc := &fakeLegacy{}
		s, _ := newTestServer(t, nil, lc)
		rec := serve(s, upload(t, "file", "renamed.ppt", billingDeck()))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Zero(t, lc.called)
	})

	errs := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"tool missing", fmt.Errorf("%w (tried soffice)", legacy.ErrToolNotFound), http.StatusBadRequest, msgNoTool},
		{"no output", fmt.Errorf("%w: done", legacy.ErrNoOutput), http.StatusBadRequest, msgNoOutput},
		{"tool failed", &legacy.ToolError{Output: "Error: source file could not be loaded", Err: errors.New("exit status 1")},
			http.StatusBadRequest, "LibreOffice conversion failed: exit status 1: Error: source file could not be loaded"},
		{"not a ppt", fmt.Errorf("%w: bad signature", legacy.ErrNotLegacyDeck), http.StatusBadRequest, "Uploaded .ppt file is not a PowerPoint presentation"},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError, "Conversion error: disk full"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil, &fakeLegacy{err: tt.err})
			rec := serve(s, upload(t, "file", "old.ppt", []byte{0xD0, 0xCF, 0x11, 0xE0}))

			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, strings.HasPrefix(detail(t, rec), tt.detail), "detail %q", rec.Body.String())
		})
	}
}

func TestHealthAndRouting(t *testing.T) {
	s, _ := newTestServer(t, nil, &fakeLegacy{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "no static dir configured")
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, nil, &fakeLegacy{})

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := serve(s, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>upload</h1>"), 0o644))
	cfg := config.DefaultConfig()
	cfg.StaticDir = dir
	s, _ := newTestServer(t, cfg, &fakeLegacy{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>upload</h1>", string(body))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListenAndServeShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	s, _ := newTestServer(t, cfg, &fakeLegacy{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
