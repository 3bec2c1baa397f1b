package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/msgexport/internal/pipeline"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/save"
)

type exportRequest struct {
	Content  string           `json:"content"`
	Format   string           `json:"format"`
	Template *render.Template `json:"template,omitempty"`
}

// handleExport renders one message. By default the document is returned
// as a download; with ?store=true it is saved in the output directory and
// described in JSON instead.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentBytes+1024*1024)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, err)
		return
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(req.Content)) > s.cfg.MaxContentBytes {
		jsonError(w, fmt.Sprintf("content exceeds %d bytes", s.cfg.MaxContentBytes), http.StatusRequestEntityTooLarge)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	if store, _ := strconv.ParseBool(r.URL.Query().Get("store")); store {
		res, err := s.orchestrator.Export(ctx, req.Content, format, req.Template)
		if err != nil {
			s.exportError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"filename": res.Filename,
			"bytes":    len(res.Data),
			"blocks":   res.Blocks,
		})
		return
	}

	if _, err := s.orchestrator.ExportWith(ctx, downloadSaver(w, format), req.Content, format, req.Template); err != nil {
		s.exportError(w, err)
	}
}

// downloadSaver streams the document to the client as an attachment.
func downloadSaver(w http.ResponseWriter, format render.Format) save.Saver {
	return save.SaverFunc(func(ctx context.Context, blob []byte, filename string) error {
		h := w.Header()
		h.Set("Content-Type", format.ContentType())
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", save.SanitizeFilename(filename)))
		h.Set("Content-Length", strconv.Itoa(len(blob)))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write(blob)
		return err
	})
}

// handleBatchExport renders several messages and returns them in one zip.
func (s *Server) handleBatchExport(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxContentBytes*int64(max(s.cfg.MaxBatchSize, 1)) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var body struct {
		Requests []exportRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		decodeError(w, err)
		return
	}

	reqs := make([]pipeline.Request, 0, len(body.Requests))
	for i, req := range body.Requests {
		format, err := render.ParseFormat(req.Format)
		if err != nil {
			jsonError(w, fmt.Sprintf("request %d: %s", i, err), http.StatusBadRequest)
			return
		}
		reqs = append(reqs, pipeline.Request{Content: req.Content, Format: format, Template: req.Template})
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	results, err := s.orchestrator.RenderBatch(ctx, reqs)
	if err != nil {
		s.exportError(w, err)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, res := range results {
		f, err := zw.Create(res.Filename)
		if err == nil {
			_, err = f.Write(res.Data)
		}
		if err != nil {
			s.exportError(w, fmt.Errorf("zip %s: %w", res.Filename, err))
			return
		}
	}
	if err := zw.Close(); err != nil {
		s.exportError(w, fmt.Errorf("zip: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="exports.zip"`)
	w.Write(buf.Bytes())
}

func (s *Server) exportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrEmptyContent),
		errors.Is(err, pipeline.ErrUnsupportedFormat),
		errors.Is(err, pipeline.ErrInvalidTemplate),
		errors.Is(err, pipeline.ErrBatchEmpty):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrBatchTooLarge):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("export timed out", "error", err)
		jsonError(w, "export timed out", http.StatusGatewayTimeout)
	default:
		s.log.Error("export failed", "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
	}
}

func decodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
