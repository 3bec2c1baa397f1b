package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := exportCmd()
	if args[0] == "inspect" {
		cmd = inspectCmd()
	}
	cmd.SetArgs(args[1:])
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportThenInspect(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "# Notes\n\n- one\n- two\n", "export", "-", "--format", "docx", "--out", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != dir || !strings.HasSuffix(path, ".docx") {
		t.Fatalf("unexpected output path %q", path)
	}

	out, err = run(t, "", "inspect", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"format: docx", "# Notes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestExport_WithTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "tpl.yaml")
	if err := os.WriteFile(tpl, []byte("showPageNumbers: true\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := filepath.Join(dir, "msg.md")
	if err := os.WriteFile(msg, []byte("Hello"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := run(t, "", "export", msg, "--template", tpl, "--out", filepath.Join(dir, "docs"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "custom_doc_") || !strings.HasSuffix(strings.TrimSpace(out), ".pdf") {
		t.Errorf("expected custom PDF path, got %q", out)
	}

	out, err = run(t, "", "inspect", strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "pages: 1") {
		t.Errorf("expected one page, got %q", out)
	}
}

func TestExport_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "text", "export", "-", "--format", "odt", "--out", dir); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := run(t, "   ", "export", "-", "--out", dir); err == nil {
		t.Error("expected error for empty message")
	}
	if _, err := run(t, "", "inspect", filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("expected error for unsupported file")
	}
}
