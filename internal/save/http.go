package save

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// HTTPSaver uploads documents with PUT {baseURL}/{filename}, for sharing
// through a document store or WebDAV endpoint.
type HTTPSaver struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPSaver(baseURL, apiKey string) *HTTPSaver {
	return &HTTPSaver{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPSaver) Save(ctx context.Context, blob []byte, filename string) error {
	name := SanitizeFilename(filename)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/"+url.PathEscape(name), bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType(name))
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, string(respBody))
	}
	return nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
