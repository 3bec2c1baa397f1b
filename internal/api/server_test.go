package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/msgexport/internal/config"
	"github.com/dgallion1/msgexport/internal/pipeline"
	"github.com/dgallion1/msgexport/internal/save"
)

const testKey = "test-key"

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		ExportAPIKey:         testKey,
		OutputDir:            dir,
		MaxContentBytes:      64 * 1024,
		MaxBatchSize:         3,
		MaxConcurrentExports: 2,
		RequestTimeout:       30 * time.Second,
		MarginMM:             15,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, &save.DirSaver{Dir: dir}, log)
	return NewServer(orch, log, cfg), dir
}

func do(t *testing.T, s *Server, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestExport_RequiresAuth(t *testing.T) {
	s, _ := testServer(t)
	rec := do(t, s, http.MethodPost, "/api/export", `{"content":"x","format":"pdf"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", rec.Code)
	}
}

func TestExport_Download(t *testing.T) {
	s, dir := testServer(t)
	rec := do(t, s, http.MethodPost, "/api/export", `{"content":"# Title\n\nHello","format":"PDF"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="response_`) || !strings.HasSuffix(cd, `.pdf"`) {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected PDF body")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected download not stored, found %d files", len(entries))
	}
}

func TestExport_Store(t *testing.T) {
	s, dir := testServer(t)
	body := `{"content":"Hi","format":"docx","template":{"variant":"footer","footerText":"Acme"}}`
	rec := do(t, s, http.MethodPost, "/api/export?store=true", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Filename string `json:"filename"`
		Bytes    int    `json:"bytes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Filename, "custom_doc_") || !strings.HasSuffix(resp.Filename, ".docx") {
		t.Errorf("unexpected filename %q", resp.Filename)
	}
	info, err := os.Stat(filepath.Join(dir, resp.Filename))
	if err != nil {
		t.Fatalf("expected stored file: %v", err)
	}
	if int(info.Size()) != resp.Bytes {
		t.Errorf("expected %d bytes on disk, got %d", resp.Bytes, info.Size())
	}
}

func TestExport_BadRequests(t *testing.T) {
	s, _ := testServer(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"content":`, http.StatusBadRequest},
		{"unknown format", `{"content":"x","format":"odt"}`, http.StatusBadRequest},
		{"empty content", `{"content":"  ","format":"pdf"}`, http.StatusBadRequest},
		{"bad template", `{"content":"x","format":"pdf","template":{"font":"comic"}}`, http.StatusBadRequest},
		{"too large", `{"content":"` + strings.Repeat("a", 70*1024) + `","format":"pdf"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/export", tt.body, true)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON error, got %q", ct)
			}
		})
	}
}

func TestBatchExport(t *testing.T) {
	s, _ := testServer(t)
	body := `{"requests":[{"content":"one","format":"pdf"},{"content":"two","format":"docx"}]}`
	rec := do(t, s, http.MethodPost, "/api/export/batch", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(zr.File))
	}
	if !strings.HasSuffix(zr.File[0].Name, "_1.pdf") || !strings.HasSuffix(zr.File[1].Name, "_2.docx") {
		t.Errorf("unexpected names %q, %q", zr.File[0].Name, zr.File[1].Name)
	}
}

func TestBatchExport_Errors(t *testing.T) {
	s, _ := testServer(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty", `{"requests":[]}`, http.StatusBadRequest},
		{"bad format", `{"requests":[{"content":"x","format":"rtf"}]}`, http.StatusBadRequest},
		{"too many", `{"requests":[{"content":"a","format":"pdf"},{"content":"b","format":"pdf"},{"content":"c","format":"pdf"},{"content":"d","format":"pdf"}]}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/export/batch", tt.body, true)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}
