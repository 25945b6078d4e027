package backup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is a container's live environment. A key listed without a
// value maps to nil.
type Environment map[string]*string

// Has reports whether key is present, with or without a value
func (e Environment) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Get returns the value of key, or fallback when it is missing, valueless or empty
func (e Environment) Get(key, fallback string) string {
	if v, ok := e[key]; ok && v != nil && *v != "" {
		return *v
	}
	return fallback
}

// ParseEnvironment parses KEY=VALUE lines as printed by env. Values are taken
// literally, without variable expansion. Lines that are not valid assignments
// are ignored.
func ParseEnvironment(r io.Reader) (Environment, error) {
	env := make(Environment)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			if isEnvKey(line) {
				env[line] = nil
			}
			continue
		}

		key = strings.TrimSpace(key)
		if !isEnvKey(key) {
			continue
		}

		literal := literalValue(key, value)
		env[key] = &literal
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return env, nil
}

// literalValue single-quotes the value for godotenv, which disables expansion
// and escape handling. Values godotenv cannot quote are kept as they are.
func literalValue(key, value string) string {
	if strings.Contains(value, "'") {
		return value
	}

	parsed, err := godotenv.Unmarshal(key + "='" + value + "'")
	if err != nil {
		return value
	}
	if v, ok := parsed[key]; ok {
		return v
	}
	return value
}

func isEnvKey(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}

// ReadEnvironment runs env inside the container and parses its output
func ReadEnvironment(ctx context.Context, runtime Runtime, containerID string) (Environment, error) {
	result, err := runtime.Exec(ctx, containerID, []string{"env"})
	if err != nil {
		return nil, fmt.Errorf("failed to exec env: %w", err)
	}

	if result.ExitCode != 0 {
		return nil, fmt.Errorf("env failed with exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return ParseEnvironment(strings.NewReader(result.Stdout))
}
