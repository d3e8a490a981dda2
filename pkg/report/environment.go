package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aquariux/wt-automation/pkg/logger"
)

// Environment describes the run shown on the report overview.
type Environment struct {
	Client   string
	Platform string
	Browser  string
	Env      string
}

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	return cases.Title(language.English).String(s)
}

// Properties returns the Key=Value lines for environment.properties.
func (e Environment) Properties() []string {
	parts := strings.Split(e.Client, "_")
	for i, p := range parts {
		parts[i] = Capitalize(p)
	}

	platform := Capitalize(e.Platform)
	if strings.EqualFold(e.Platform, "web") && e.Browser != "" {
		platform += " - " + Capitalize(e.Browser)
	}

	return []string{
		"Client=" + strings.Join(parts, " "),
		"Platform=" + platform,
		"Environment=" + Capitalize(e.Env),
	}
}

// WriteEnvironment writes environment.properties into dir.
func WriteEnvironment(dir string, e Environment) error {
	var b strings.Builder
	for _, line := range e.Properties() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	path := filepath.Join(dir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}

// CleanLogFiles removes the .txt log attachments from dir and returns how
// many were deleted.
func CleanLogFiles(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}
