package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
)

var extensions = map[string]string{
	"image/png":        "png",
	"image/jpeg":       "jpg",
	"video/mp4":        "mp4",
	"video/quicktime":  "mov",
	"text/html":        "html",
	"text/plain":       "txt",
	"application/json": "json",
}

func extensionFor(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return "attach"
}

// Writer is the reporting sink for one test: it stores attachments in the
// results directory and writes the final result file.
type Writer struct {
	dir string

	mu          sync.Mutex
	attachments []Attachment
}

// NewWriter creates a writer for the given results directory, creating it if
// needed.
func NewWriter(dir string) (*Writer, error) {
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the results directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Attach stores body as <uuid>-attachment.<ext> and records it on the test.
func (w *Writer) Attach(name, contentType string, body []byte) error {
	source := fmt.Sprintf("%s-attachment.%s", uuid.New().String(), extensionFor(contentType))
	if err := os.WriteFile(filepath.Join(w.dir, source), body, 0o644); err != nil {
		return fmt.Errorf("write attachment %s: %w", name, err)
	}
	w.add(Attachment{Name: name, Source: source, Type: contentType})
	return nil
}

// AttachFile copies the file at path into the results directory.
func (w *Writer) AttachFile(name, contentType, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	source := fmt.Sprintf("%s-attachment.%s", uuid.New().String(), extensionFor(contentType))
	out, err := os.Create(filepath.Join(w.dir, source))
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	w.add(Attachment{Name: name, Source: source, Type: contentType})
	return nil
}

func (w *Writer) add(a Attachment) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attachments = append(w.attachments, a)
	logger.Debug("Attached %q (%s)", a.Name, a.Source)
}

// Attachments returns the attachments recorded so far, in order.
func (w *Writer) Attachments() []Attachment {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Attachment, len(w.attachments))
	copy(out, w.attachments)
	return out
}

// WriteResult writes r as <uuid>-result.json and returns the path.
func (w *Writer) WriteResult(r *Result) (string, error) {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	path := filepath.Join(w.dir, r.UUID+"-result.json")
	if err := atomicWriteJSON(path, r); err != nil {
		return "", fmt.Errorf("write allure result %s: %w", r.UUID, err)
	}
	return path, nil
}

// NewResult creates a finished result skeleton.
func NewResult(id, fullName string, start, stop time.Time, status core.Status) *Result {
	return &Result{
		UUID:      id,
		HistoryID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(fullName)).String(),
		FullName:  fullName,
		Name:      DisplayName(fullName),
		Status:    status,
		Stage:     "finished",
		Start:     start.UnixMilli(),
		Stop:      stop.UnixMilli(),
	}
}

// DisplayName derives a readable test name from a fully-qualified one:
// the part after the last "." (and after "#" if present), without a leading
// "test" token, with underscores turned into spaces.
func DisplayName(fullName string) string {
	name := fullName[strings.LastIndex(fullName, ".")+1:]
	if i := strings.LastIndex(name, "#"); i >= 0 {
		name = name[i+1:]
	}
	name = trimTestPrefix(name)
	return strings.TrimSpace(strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == '_' }), " "))
}

// trimTestPrefix drops a leading "test_" or a "Test"/"test" token followed by
// an upper-case letter, so "TestLogin" becomes "Login" but "testing" stays.
func trimTestPrefix(name string) string {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "test_") && len(name) > 5 {
		return name[5:]
	}
	if strings.HasPrefix(lower, "test") && len(name) > 4 && unicode.IsUpper(rune(name[4])) {
		return name[4:]
	}
	return name
}
