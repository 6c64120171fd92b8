package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `version: 1
phases:
  fast: [lint, typecheck, test]
  pr: [lint, typecheck, test, build]
gates:
  lint:
    command: pnpm -s eslint .
  typecheck:
    command: pnpm -s tsc --noEmit
    timeout: 120
  test:
    command: pnpm -s vitest run
    cwd: apps/web
    env:
      CI: "true"
  build:
    command: pnpm -s build
options:
  logTailLines: 50
  stopOnFirstFailure: true
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, validConfig)

	res, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := res.Config
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if got := strings.Join(cfg.Phases["fast"], ","); got != "lint,typecheck,test" {
		t.Errorf("phases.fast = %s, want lint,typecheck,test", got)
	}
	if got := strings.Join(cfg.Phases["pr"], ","); got != "lint,typecheck,test,build" {
		t.Errorf("phases.pr = %s, want lint,typecheck,test,build", got)
	}
	if cfg.Gates["lint"].Command != "pnpm -s eslint ." {
		t.Errorf("lint command = %q", cfg.Gates["lint"].Command)
	}
	if cfg.Gates["typecheck"].Timeout != 120 {
		t.Errorf("typecheck timeout = %d, want 120", cfg.Gates["typecheck"].Timeout)
	}
	if cfg.Gates["test"].Env["CI"] != "true" {
		t.Errorf("test env CI = %q, want true", cfg.Gates["test"].Env["CI"])
	}
	if cfg.LogTailLines() != 50 {
		t.Errorf("LogTailLines() = %d, want 50", cfg.LogTailLines())
	}
	if !cfg.StopOnFirstFailure() {
		t.Error("StopOnFirstFailure() = false, want true")
	}
	if res.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", res.RepoRoot, dir)
	}
}

func TestLoad_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, validConfig)

	sub := filepath.Join(root, "apps", "web")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RepoRoot != root {
		t.Errorf("RepoRoot = %q, want %q", res.RepoRoot, root)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	workspace := t.TempDir()
	other := t.TempDir()
	path := filepath.Join(other, "custom.yml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(workspace, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.RepoRoot != workspace {
		t.Errorf("RepoRoot = %q, want workspace %q", res.RepoRoot, workspace)
	}
	if res.Path != path {
		t.Errorf("Path = %q, want %q", res.Path, path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "does-not-exist.yml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %T, want *config.Error", err)
	}
	if cerr.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", cerr.ExitCode())
	}
	if !strings.Contains(err.Error(), "Failed to read config file") {
		t.Errorf("error = %q, want 'Failed to read config file'", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: 1\nphases: [unclosed\n")

	_, err := Load(dir, "")
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *config.Error", err)
	}
	if !strings.Contains(err.Error(), "Failed to parse YAML") {
		t.Errorf("error = %q, want 'Failed to parse YAML'", err)
	}
}

func TestLoad_EmptyPhase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: 1\nphases:\n  fast: []\ngates:\n  lint:\n    command: echo\n")

	_, err := Load(dir, "")
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *config.Error", err)
	}
	if cerr.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", cerr.ExitCode())
	}
	if !strings.Contains(err.Error(), "phases.fast") || !strings.Contains(err.Error(), "at least one gate") {
		t.Errorf("error = %q, want phases.fast / at least one gate", err)
	}
	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("error does not wrap *FieldError: %v", err)
	}
	if ferr.Path != "phases.fast" {
		t.Errorf("FieldError.Path = %q, want phases.fast", ferr.Path)
	}
}

func TestValidate_Violations(t *testing.T) {
	cases := map[string]struct {
		body string
		path string
	}{
		"bad version": {
			body: "version: \"1\"\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n",
			path: "version",
		},
		"version 2": {
			body: "version: 2\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n",
			path: "version",
		},
		"no phases": {
			body: "version: 1\nphases: {}\ngates:\n  x:\n    command: echo\n",
			path: "phases",
		},
		"no gates": {
			body: "version: 1\nphases:\n  a: [x]\ngates: {}\n",
			path: "gates",
		},
		"empty command": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: \"\"\n",
			path: "gates.x.command",
		},
		"negative timeout": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n    timeout: -5\n",
			path: "gates.x.timeout",
		},
		"fractional timeout": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n    timeout: 1.5\n",
			path: "gates.x.timeout",
		},
		"absolute cwd": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n    cwd: /tmp\n",
			path: "gates.x.cwd",
		},
		"escaping cwd": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n    cwd: ../other\n",
			path: "gates.x.cwd",
		},
		"numeric env": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n    env:\n      PORT: 8080\n",
			path: "gates.x.env.PORT",
		},
		"empty gate name": {
			body: "version: 1\nphases:\n  a: [\"\"]\ngates:\n  x:\n    command: echo\n",
			path: "phases.a.0",
		},
		"bad tail lines": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\noptions:\n  logTailLines: 0\n",
			path: "options.logTailLines",
		},
		"bad stop flag": {
			body: "version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\noptions:\n  stopOnFirstFailure: maybe\n",
			path: "options.stopOnFirstFailure",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := Decode([]byte(tc.body))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			_, err = Validate(raw)
			var ferr *FieldError
			if !errors.As(err, &ferr) {
				t.Fatalf("Validate error = %v, want *FieldError", err)
			}
			if ferr.Path != tc.path {
				t.Errorf("Path = %q, want %q (reason %q)", ferr.Path, tc.path, ferr.Reason)
			}
		})
	}
}

func TestValidate_NotAMapping(t *testing.T) {
	_, err := Validate([]any{"a"})
	if err == nil || !strings.HasPrefix(err.Error(), "(root):") {
		t.Errorf("error = %v, want (root) prefix", err)
	}
}

func TestValidate_UnknownGateReferenceAllowed(t *testing.T) {
	// Unknown references are reported when a phase is run, not at load time.
	cfg, err := Parse([]byte("version: 1\nphases:\n  a: [missing]\ngates:\n  x:\n    command: echo\n"), FileName)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Phases["a"][0] != "missing" {
		t.Errorf("phases.a = %v", cfg.Phases["a"])
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\n"), FileName)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LogTailLines() != DefaultLogTailLines {
		t.Errorf("LogTailLines() = %d, want %d", cfg.LogTailLines(), DefaultLogTailLines)
	}
	if !cfg.StopOnFirstFailure() {
		t.Error("StopOnFirstFailure() = false, want true")
	}
	def := cfg.Gates["x"]
	if def.TimeoutDuration() != 60*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 60s", def.TimeoutDuration())
	}
	if got := def.WorkDir("/repo"); got != "/repo" {
		t.Errorf("WorkDir = %q, want /repo", got)
	}
}

func TestStopOnFirstFailure_Disabled(t *testing.T) {
	cfg, err := Parse([]byte("version: 1\nphases:\n  a: [x]\ngates:\n  x:\n    command: echo\noptions:\n  stopOnFirstFailure: false\n"), FileName)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.StopOnFirstFailure() {
		t.Error("StopOnFirstFailure() = true, want false")
	}
}

func TestPhaseNames_Sorted(t *testing.T) {
	cfg, err := Parse([]byte(validConfig), FileName)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := strings.Join(cfg.PhaseNames(), ","); got != "fast,pr" {
		t.Errorf("PhaseNames() = %s, want fast,pr", got)
	}
}

func TestTemplate_IsValid(t *testing.T) {
	cfg, err := Parse([]byte(Template), FileName)
	if err != nil {
		t.Fatalf("Template does not validate: %v", err)
	}
	if len(cfg.Phases["fast"]) == 0 {
		t.Error("template has no fast phase")
	}
}

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", data)
	}
	for _, key := range []string{"version", "phases", "gates", "options"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
