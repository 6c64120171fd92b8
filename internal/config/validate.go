package config

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Validate checks a decoded YAML value against the config schema and
// returns the typed config. Fields are visited in a fixed order (version,
// phases, gates, options; map keys sorted) so the reported violation is
// always the same for the same input. The error is a *FieldError.
func Validate(raw any) (*Config, error) {
	root, ok := asMap(raw)
	if !ok {
		return nil, &FieldError{Reason: "expected a mapping"}
	}

	cfg := &Config{}

	v, ok := root["version"]
	if !ok || v == nil {
		return nil, &FieldError{Path: "version", Reason: "required"}
	}
	if n, ok := asInt(v); !ok || n != 1 {
		return nil, &FieldError{Path: "version", Reason: "must equal 1"}
	}
	cfg.Version = 1

	phases, err := validatePhases(root["phases"])
	if err != nil {
		return nil, err
	}
	cfg.Phases = phases

	gates, err := validateGates(root["gates"])
	if err != nil {
		return nil, err
	}
	cfg.Gates = gates

	opts, err := validateOptions(root["options"])
	if err != nil {
		return nil, err
	}
	cfg.Options = opts

	return cfg, nil
}

func validatePhases(raw any) (map[string][]string, error) {
	if raw == nil {
		return nil, &FieldError{Path: "phases", Reason: "required"}
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, &FieldError{Path: "phases", Reason: "expected a mapping of phase name to gate list"}
	}
	if len(m) == 0 {
		return nil, &FieldError{Path: "phases", Reason: "must define at least one phase"}
	}

	out := make(map[string][]string, len(m))
	for _, name := range sortedKeys(m) {
		path := "phases." + name
		list, ok := m[name].([]any)
		if !ok {
			if m[name] == nil {
				return nil, &FieldError{Path: path, Reason: "must contain at least one gate"}
			}
			return nil, &FieldError{Path: path, Reason: "expected a list of gate names"}
		}
		if len(list) == 0 {
			return nil, &FieldError{Path: path, Reason: "must contain at least one gate"}
		}
		gates := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, &FieldError{Path: path + "." + strconv.Itoa(i), Reason: "must be a non-empty string"}
			}
			gates = append(gates, s)
		}
		out[name] = gates
	}
	return out, nil
}

func validateGates(raw any) (map[string]GateDefinition, error) {
	if raw == nil {
		return nil, &FieldError{Path: "gates", Reason: "required"}
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, &FieldError{Path: "gates", Reason: "expected a mapping of gate name to definition"}
	}
	if len(m) == 0 {
		return nil, &FieldError{Path: "gates", Reason: "must define at least one gate"}
	}

	out := make(map[string]GateDefinition, len(m))
	for _, name := range sortedKeys(m) {
		def, err := validateGate("gates."+name, m[name])
		if err != nil {
			return nil, err
		}
		out[name] = def
	}
	return out, nil
}

func validateGate(path string, raw any) (GateDefinition, error) {
	var def GateDefinition

	m, ok := asMap(raw)
	if !ok {
		return def, &FieldError{Path: path, Reason: "expected a mapping"}
	}

	cmd, ok := m["command"].(string)
	if !ok || strings.TrimSpace(cmd) == "" {
		return def, &FieldError{Path: path + ".command", Reason: "gate command must be a non-empty string"}
	}
	def.Command = cmd

	if v, ok := m["timeout"]; ok && v != nil {
		n, ok := asInt(v)
		if !ok || n <= 0 {
			return def, &FieldError{Path: path + ".timeout", Reason: "must be a positive integer (seconds)"}
		}
		def.Timeout = n
	}

	if v, ok := m["cwd"]; ok && v != nil {
		cwd, ok := v.(string)
		if !ok || cwd == "" {
			return def, &FieldError{Path: path + ".cwd", Reason: "must be a non-empty string"}
		}
		if filepath.IsAbs(cwd) {
			return def, &FieldError{Path: path + ".cwd", Reason: "must be a path relative to the repository root"}
		}
		clean := filepath.Clean(cwd)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return def, &FieldError{Path: path + ".cwd", Reason: "must stay inside the repository root"}
		}
		def.Cwd = cwd
	}

	if v, ok := m["env"]; ok && v != nil {
		env, ok := asMap(v)
		if !ok {
			return def, &FieldError{Path: path + ".env", Reason: "expected a mapping of variable name to value"}
		}
		def.Env = make(map[string]string, len(env))
		for _, k := range sortedKeys(env) {
			s, ok := env[k].(string)
			if !ok {
				return def, &FieldError{Path: path + ".env." + k, Reason: fmt.Sprintf("expected string, got %s", typeName(env[k]))}
			}
			def.Env[k] = s
		}
	}

	return def, nil
}

func validateOptions(raw any) (Options, error) {
	var opts Options
	if raw == nil {
		return opts, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return opts, &FieldError{Path: "options", Reason: "expected a mapping"}
	}

	if v, ok := m["logTailLines"]; ok && v != nil {
		n, ok := asInt(v)
		if !ok || n <= 0 {
			return opts, &FieldError{Path: "options.logTailLines", Reason: "must be a positive integer"}
		}
		opts.RawLogTailLines = n
	}

	if v, ok := m["stopOnFirstFailure"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return opts, &FieldError{Path: "options.stopOnFirstFailure", Reason: fmt.Sprintf("expected boolean, got %s", typeName(v))}
		}
		opts.RawStopOnFirstFailure = &b
	}

	return opts, nil
}

// asMap accepts both map shapes yaml.v3 can produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// asInt accepts integer values and floats with no fractional part.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "list"
	}
	if _, ok := asMap(v); ok {
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
