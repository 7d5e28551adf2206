package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: demo
version: "0.1.0"
authors:
  - Ada
  - Grace
warnings: hide
targets:
  app:
    mode: run
    entry: src/main.json
  asm:
    mode: compile
    entry: src/main.json
    output: build/main.s
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if manifest.Name != "demo" || manifest.Version != "0.1.0" {
		t.Fatalf("header = %q %q", manifest.Name, manifest.Version)
	}
	if len(manifest.Authors) != 2 || manifest.Authors[1] != "Grace" {
		t.Fatalf("Authors unexpected: %#v", manifest.Authors)
	}
	if manifest.Warnings != WarningsHide {
		t.Fatalf("Warnings = %q", manifest.Warnings)
	}
	if got := strings.Join(manifest.TargetOrder, ","); got != "app,asm" {
		t.Fatalf("TargetOrder = %q", got)
	}

	def, err := manifest.DefaultTarget()
	if err != nil || def.Name != "app" || def.Mode != TargetModeRun {
		t.Fatalf("DefaultTarget = %#v, %v", def, err)
	}
	asm, ok := manifest.FindTarget(" asm ")
	if !ok || asm.Mode != TargetModeCompile {
		t.Fatalf("FindTarget(asm) = %#v, %v", asm, ok)
	}
	if got, want := manifest.Resolve(asm.Output), filepath.Join(filepath.Dir(path), "build", "main.s"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
	if got := manifest.Resolve("/abs/file.json"); got != "/abs/file.json" {
		t.Fatalf("Resolve kept absolute path as %q", got)
	}
}

func TestLoadManifestSingleAuthor(t *testing.T) {
	path := writeManifest(t, `
name: demo
authors: Ada
targets:
  app: {mode: symbols, entry: main.json}
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(manifest.Authors) != 1 || manifest.Authors[0] != "Ada" {
		t.Fatalf("Authors = %#v", manifest.Authors)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
version: "not a version!"
warnings: loud
targets:
  app:
    mode: interpret
  lib:
    entry: lib.json
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"name must be provided",
		`invalid version "not a version!"`,
		`warnings must be "show" or "hide"`,
		`target "app" has unsupported mode "interpret"`,
		`target "app" requires an entry`,
		`target "lib" missing mode`,
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("issues = %q", verr.Issues)
	}
	for i, issue := range want {
		if verr.Issues[i] != issue {
			t.Fatalf("issue %d = %q, want %q", i, verr.Issues[i], issue)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
dependencies:
  stdlib: "1.0"
targets:
  app: {mode: run, entry: main.json}
`)
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "dependencies") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	path := writeManifest(t, "")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
	var m *Manifest
	if _, err := m.DefaultTarget(); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("nil manifest DefaultTarget = %v", err)
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
