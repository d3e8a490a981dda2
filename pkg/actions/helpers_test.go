package actions

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aquariux/wt-automation/pkg/assert"
	"github.com/aquariux/wt-automation/pkg/steplog"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// fakeDriver is a minimal WebDriver server keyed by "using|value".
type fakeDriver struct {
	mu sync.Mutex

	elements map[string]string // selector -> element id
	hidden   map[string]int    // element id -> remaining "not displayed" answers
	disabled map[string]bool
	findErr  string // W3C error code returned by every find when set

	finds    int
	selector []string
	typed    []string
	calls    []string
	actions  []interface{}
	keycodes []int
	url      string
	failKbd  bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements: map[string]string{},
		hidden:   map[string]int{},
		disabled: map[string]bool{},
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code string) {
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]interface{}{
		"value": map[string]interface{}{"error": code, "message": code},
	})
}

func (f *fakeDriver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/session/s")
	f.calls = append(f.calls, r.Method+" "+path)

	var body map[string]interface{}
	if r.Method == "POST" {
		json.NewDecoder(r.Body).Decode(&body)
	}

	switch {
	case path == "/element" || path == "/elements":
		f.finds++
		key, _ := body["using"].(string)
		value, _ := body["value"].(string)
		sel := key + "|" + value
		f.selector = append(f.selector, sel)
		if f.findErr != "" {
			writeError(w, f.findErr)
			return
		}
		id, ok := f.elements[sel]
		if path == "/elements" {
			list := []interface{}{}
			if ok {
				list = append(list, map[string]interface{}{elementKey: id})
			}
			writeJSON(w, map[string]interface{}{"value": list})
			return
		}
		if !ok {
			writeError(w, "no such element")
			return
		}
		writeJSON(w, map[string]interface{}{"value": map[string]interface{}{elementKey: id}})

	case strings.HasSuffix(path, "/displayed"):
		id := strings.Split(path, "/")[2]
		shown := true
		if f.hidden[id] != 0 {
			shown = false
			if f.hidden[id] > 0 {
				f.hidden[id]--
			}
		}
		writeJSON(w, map[string]interface{}{"value": shown})

	case strings.HasSuffix(path, "/enabled"):
		id := strings.Split(path, "/")[2]
		writeJSON(w, map[string]interface{}{"value": !f.disabled[id]})

	case strings.HasSuffix(path, "/value"):
		text, _ := body["text"].(string)
		f.typed = append(f.typed, text)
		writeJSON(w, map[string]interface{}{"value": nil})

	case strings.HasSuffix(path, "/text"):
		writeJSON(w, map[string]interface{}{"value": "Sign in"})

	case strings.HasSuffix(path, "/rect"):
		writeJSON(w, map[string]interface{}{"value": map[string]interface{}{
			"x": 0.0, "y": 100.0, "width": 200.0, "height": 50.0,
		}})

	case strings.HasSuffix(path, "/click"), strings.HasSuffix(path, "/clear"):
		writeJSON(w, map[string]interface{}{"value": nil})

	case path == "/actions":
		f.actions = append(f.actions, body["actions"])
		writeJSON(w, map[string]interface{}{"value": nil})

	case path == "/screenshot":
		writeJSON(w, map[string]interface{}{"value": base64.StdEncoding.EncodeToString([]byte("png"))})

	case path == "/url":
		if r.Method == "POST" {
			f.url, _ = body["url"].(string)
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		writeJSON(w, map[string]interface{}{"value": f.url})

	case path == "/appium/device/hide_keyboard", path == "/execute/sync":
		if f.failKbd {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{"error": "unknown error", "message": "keyboard not shown"},
			})
			return
		}
		writeJSON(w, map[string]interface{}{"value": nil})

	case path == "/appium/device/press_keycode":
		code, _ := body["keycode"].(float64)
		f.keycodes = append(f.keycodes, int(code))
		writeJSON(w, map[string]interface{}{"value": nil})

	default:
		writeError(w, "unknown command")
	}
}

type attachment struct {
	name        string
	contentType string
}

type fakeSink struct {
	mu       sync.Mutex
	attached []attachment
}

func (s *fakeSink) Attach(name, contentType string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = append(s.attached, attachment{name, contentType})
	return nil
}

type sessionList []*webdriver.Client

func (l sessionList) All() []*webdriver.Client { return l }

type fixture struct {
	driver  *fakeDriver
	server  *httptest.Server
	client  *webdriver.Client
	log     *steplog.Log
	sink    *fakeSink
	actions *Actions
}

func newFixture(t *testing.T, platform string) *fixture {
	t.Helper()
	f := &fixture{driver: newFakeDriver(), log: steplog.New(), sink: &fakeSink{}}
	f.server = httptest.NewServer(f.driver)
	t.Cleanup(f.server.Close)

	f.client = webdriver.NewClient(f.server.URL)
	f.client.Attach("s", platform)

	soft := assert.NewRecorder(f.log, sessionList{f.client}, f.sink)
	f.actions = New(f.client, f.log, f.sink, soft)
	return f
}
