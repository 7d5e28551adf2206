package interpreter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oak/toolchain-go/pkg/driver"
)

type fixtureManifest struct {
	Description string `json:"description"`
	Entry       string `json:"entry"`
	Expect      struct {
		Stdout []string `json:"stdout"`
		Errors []string `json:"errors"`
	} `json:"expect"`
}

func fixturesRoot() string {
	return filepath.Join("..", "..", "testdata", "fixtures")
}

func readManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return fixtureManifest{}
		}
		t.Fatalf("read manifest %s: %v", dir, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", dir, err)
	}
	return manifest
}

func TestFixtures(t *testing.T) {
	entries, err := os.ReadDir(fixturesRoot())
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(fixturesRoot(), entry.Name())
		t.Run(entry.Name(), func(t *testing.T) {
			manifest := readManifest(t, dir)
			entryFile := manifest.Entry
			if entryFile == "" {
				entryFile = "program.json"
			}
			program, err := driver.LoadProgram(filepath.Join(dir, entryFile))
			if err != nil {
				t.Fatalf("load fixture: %v", err)
			}
			result := New().Execute(program)
			expectErrors(t, result, manifest.Expect.Errors...)
			want := ""
			if len(manifest.Expect.Stdout) > 0 {
				want = strings.Join(manifest.Expect.Stdout, "\n") + "\n"
			}
			expectConsole(t, result.Console, want)
		})
	}
}
