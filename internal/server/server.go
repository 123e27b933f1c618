// Package server exposes deck conversion over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/ukaji3/matrixplan-go/internal/config"
	"github.com/ukaji3/matrixplan-go/internal/legacy"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan"
)

// XLSXContentType is the media type of the generated workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Client-facing messages.
const (
	msgUnsupported = "Only .pptx or .ppt files are supported. Please upload a valid file."
	msgEmpty       = "Uploaded file is empty."
	msgMissingFile = "Missing upload field \"file\"."
	msgTooLarge    = "Uploaded file is too large."
	msgNoTool      = "Converting .ppt files requires LibreOffice. Install LibreOffice and ensure 'soffice' or " +
		"'libreoffice' is on your PATH, or save the file as .pptx in PowerPoint and upload again."
	msgNoOutput = "LibreOffice did not produce a .pptx file. Try saving as .pptx in PowerPoint."
)

// multipartMemory is the part of an upload kept in memory before spilling to disk.
const multipartMemory = 8 << 20

var zipMagic = []byte("PK\x03\x04")

// LegacyConverter turns .ppt bytes into .pptx bytes.
type LegacyConverter interface {
	Convert(ctx context.Context, data []byte, name string) ([]byte, error)
}

// Server handles conversion uploads.
type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	legacy LegacyConverter
	now    func() time.Time
}

// New returns a Server. A nil legacy converter is built from cfg.Legacy.
func New(cfg *config.Config, log zerolog.Logger, lc LegacyConverter) *Server {
	if lc == nil {
		lc = legacy.NewConverter(cfg.Legacy.SofficePath, cfg.Legacy.Timeout, log)
	}
	return &Server{cfg: cfg, log: log, legacy: lc, now: time.Now}
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return s.requestLog(cors(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", s.cfg.Listen).Msg("serving")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgMissingFile)
		return
	}
	defer file.Close()

	name := header.Filename
	kind, ok := deckKind(name)
	if !ok {
		writeError(w, http.StatusBadRequest, msgUnsupported)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read upload: %v", err))
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, msgEmpty)
		return
	}
	log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("filename", name).Int("size", len(data))
	})

	if kind == kindLegacy && !bytes.HasPrefix(data, zipMagic) {
		data, err = s.legacy.Convert(r.Context(), data, name)
		if err != nil {
			log.Warn().Err(err).Msg("legacy conversion failed")
			writeError(w, legacyStatus(err), legacyDetail(err))
			return
		}
	}

	out, err := matrixplan.Convert(data, matrixplan.Options{Logger: log})
	if err != nil {
		log.Error().Err(err).Msg("conversion failed")
		writeError(w, http.StatusInternalServerError, "Conversion error: "+conversionCause(err))
		return
	}

	outName := matrixplan.OutputName(name, s.now())
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, outName))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

type kind int

const (
	kindPPTX kind = iota
	kindLegacy
)

// deckKind classifies an upload by its (case-insensitive) extension.
func deckKind(name string) (kind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pptx"):
		return kindPPTX, true
	case strings.HasSuffix(lower, ".ppt"):
		return kindLegacy, true
	}
	return 0, false
}

func legacyStatus(err error) int {
	var te *legacy.ToolError
	switch {
	case errors.Is(err, legacy.ErrToolNotFound),
		errors.Is(err, legacy.ErrNoOutput),
		errors.Is(err, legacy.ErrNotLegacyDeck),
		errors.As(err, &te):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func legacyDetail(err error) string {
	var te *legacy.ToolError
	switch {
	case errors.Is(err, legacy.ErrToolNotFound):
		return msgNoTool
	case errors.Is(err, legacy.ErrNoOutput):
		return msgNoOutput
	case errors.As(err, &te):
		return te.Error()
	case errors.Is(err, legacy.ErrNotLegacyDeck):
		return "Uploaded .ppt file is not a PowerPoint presentation: " + err.Error()
	}
	return "Conversion error: " + err.Error()
}

// conversionCause strips the wrapper prefix so clients see the root message.
func conversionCause(err error) string {
	var ce *matrixplan.ConversionError
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err.Error()
	}
	return err.Error()
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
