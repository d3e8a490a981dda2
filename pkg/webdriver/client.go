// Package webdriver is a W3C WebDriver client shared by Selenium (web) and
// Appium (android, ios) sessions.
package webdriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aquariux/wt-automation/pkg/core"
)

// W3C WebDriver element identifier key (standard constant)
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// KeyEnter is the Enter key from the W3C keyboard table.
const KeyEnter = "\uE007"

// Android key codes used by the mobile actions.
const (
	AndroidKeyHome = 3
	AndroidKeyBack = 4
)

// Client handles HTTP communication with a WebDriver endpoint.
type Client struct {
	serverURL string
	sessionID string
	client    *http.Client
	platform  string // web, android, ios
}

// NewClient creates a new client for the given server URL
// (e.g. http://localhost:4723/wd/hub or a Selenium Grid hub).
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Connect creates a new session with the given capabilities.
func (c *Client) Connect(capabilities map[string]interface{}) error {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post("/session", body)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid session response")
	}

	c.sessionID, _ = value["sessionId"].(string)
	if c.sessionID == "" {
		return fmt.Errorf("no session ID in response")
	}

	c.platform = "web"
	if caps, ok := value["capabilities"].(map[string]interface{}); ok {
		if platform, ok := caps["platformName"].(string); ok {
			switch p := strings.ToLower(platform); p {
			case "android", "ios":
				c.platform = p
			}
		}
	}
	return nil
}

// Attach binds the client to an already created session.
func (c *Client) Attach(sessionID, platform string) {
	c.sessionID = sessionID
	c.platform = platform
}

// Disconnect closes the session. Calling it on a closed client is a no-op.
func (c *Client) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(c.sessionPath())
	c.sessionID = ""
	return err
}

// SessionID returns the current session ID, empty when disconnected.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Platform returns the platform (web/android/ios).
func (c *Client) Platform() string {
	return c.platform
}

// ServerStatus is the /status payload.
type ServerStatus struct {
	Ready   bool
	Message string
	Version string // build.version, reported by Appium and Selenium Grid
}

// Status queries the server readiness endpoint. No session is needed.
func (c *Client) Status() (*ServerStatus, error) {
	resp, err := c.get("/status")
	if err != nil {
		return nil, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid status response")
	}
	st := &ServerStatus{}
	st.Ready, _ = value["ready"].(bool)
	st.Message, _ = value["message"].(string)
	if build, ok := value["build"].(map[string]interface{}); ok {
		st.Version, _ = build["version"].(string)
	}
	return st, nil
}

// Element Operations

// FindElement finds a single element.
func (c *Client) FindElement(strategy, value string) (*Element, error) {
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/element", body)
	if err != nil {
		return nil, err
	}

	elemValue, ok := resp["value"].(map[string]interface{})
	if !ok {
		return nil, core.ErrNoSuchElement
	}

	id := extractElementID(elemValue)
	if id == "" {
		return nil, core.ErrNoSuchElement
	}
	return NewElement(c, id), nil
}

// FindElements finds all matching elements. No match is an empty slice, not an error.
func (c *Client) FindElements(strategy, value string) ([]*Element, error) {
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/elements", body)
	if err != nil {
		return nil, err
	}

	values, ok := resp["value"].([]interface{})
	if !ok {
		return nil, nil
	}

	var elems []*Element
	for _, v := range values {
		if m, ok := v.(map[string]interface{}); ok {
			if id := extractElementID(m); id != "" {
				elems = append(elems, NewElement(c, id))
			}
		}
	}
	return elems, nil
}

// Navigation

// Navigate loads url in the current browsing context.
func (c *Client) Navigate(url string) error {
	_, err := c.post(c.sessionPath()+"/url", map[string]interface{}{
		"url": url,
	})
	return err
}

// CurrentURL returns the URL of the current browsing context.
func (c *Client) CurrentURL() (string, error) {
	resp, err := c.get(c.sessionPath() + "/url")
	if err != nil {
		return "", err
	}
	url, _ := resp["value"].(string)
	return url, nil
}

// Window

// MaximizeWindow maximizes the browser window.
func (c *Client) MaximizeWindow() error {
	_, err := c.post(c.sessionPath()+"/window/maximize", map[string]interface{}{})
	return err
}

// SetWindowPosition moves the browser window.
func (c *Client) SetWindowPosition(x, y int) error {
	_, err := c.post(c.sessionPath()+"/window/rect", map[string]interface{}{
		"x": x,
		"y": y,
	})
	return err
}

// SetTimeouts configures implicit and page-load timeouts.
func (c *Client) SetTimeouts(implicit, pageLoad time.Duration) error {
	_, err := c.post(c.sessionPath()+"/timeouts", map[string]interface{}{
		"implicit": implicit.Milliseconds(),
		"pageLoad": pageLoad.Milliseconds(),
	})
	return err
}

// Actions (W3C)

// PerformActions sends a raw W3C action sequence list.
func (c *Client) PerformActions(sources []map[string]interface{}) error {
	_, err := c.post(c.sessionPath()+"/actions", map[string]interface{}{"actions": sources})
	return err
}

// ClickAt moves the mouse to the element's center offset by (dx, dy) and clicks
// with the given button (0 left, 2 right).
func (c *Client) ClickAt(elementID string, dx, dy, button int) error {
	return c.PerformActions([]map[string]interface{}{
		{
			"type":       "pointer",
			"id":         "mouse",
			"parameters": map[string]interface{}{"pointerType": "mouse"},
			"actions": []map[string]interface{}{
				{
					"type":     "pointerMove",
					"duration": 0,
					"x":        dx,
					"y":        dy,
					"origin":   map[string]interface{}{w3cElementKey: elementID},
				},
				{"type": "pointerDown", "button": button},
				{"type": "pointerUp", "button": button},
			},
		},
	})
}

// Swipe performs a touch drag from one point to another.
func (c *Client) Swipe(startX, startY, endX, endY, durationMs int) error {
	return c.PerformActions([]map[string]interface{}{
		{
			"type":       "pointer",
			"id":         "finger1",
			"parameters": map[string]interface{}{"pointerType": "touch"},
			"actions": []map[string]interface{}{
				{"type": "pointerMove", "duration": 0, "x": startX, "y": startY, "origin": "viewport"},
				{"type": "pointerDown", "button": 0},
				{"type": "pointerMove", "duration": durationMs, "x": endX, "y": endY, "origin": "viewport"},
				{"type": "pointerUp", "button": 0},
			},
		},
	})
}

// Screen Operations

// Screenshot returns a screenshot as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	resp, err := c.get(c.sessionPath() + "/screenshot")
	if err != nil {
		return nil, err
	}
	encoded, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// ExecuteScript runs a synchronous script (or an Appium "mobile:" command).
func (c *Client) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	if args == nil {
		args = []interface{}{}
	}
	resp, err := c.post(c.sessionPath()+"/execute/sync", map[string]interface{}{
		"script": script,
		"args":   args,
	})
	if err != nil {
		return nil, err
	}
	return resp["value"], nil
}

// Appium extensions

// HideKeyboard hides the on-screen keyboard.
func (c *Client) HideKeyboard() error {
	_, err := c.post(c.sessionPath()+"/appium/device/hide_keyboard", nil)
	return err
}

// PressKeyCode presses a key by keycode (Android).
func (c *Client) PressKeyCode(keycode int) error {
	_, err := c.post(c.sessionPath()+"/appium/device/press_keycode", map[string]interface{}{
		"keycode": keycode,
	})
	return err
}

// StartRecordingScreen starts an Appium screen recording.
func (c *Client) StartRecordingScreen(options map[string]interface{}) error {
	_, err := c.post(c.sessionPath()+"/appium/start_recording_screen", map[string]interface{}{
		"options": options,
	})
	return err
}

// StopRecordingScreen stops the recording and returns the decoded video.
func (c *Client) StopRecordingScreen() ([]byte, error) {
	resp, err := c.post(c.sessionPath()+"/appium/stop_recording_screen", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	encoded, _ := resp["value"].(string)
	return base64.StdEncoding.DecodeString(encoded)
}

// HTTP Helpers

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

func (c *Client) get(path string) (map[string]interface{}, error) {
	return c.request("GET", path, nil)
}

func (c *Client) post(path string, body interface{}) (map[string]interface{}, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	return c.request("POST", path, body)
}

func (c *Client) delete(path string) (map[string]interface{}, error) {
	return c.request("DELETE", path, nil)
}

func (c *Client) request(method, path string, body interface{}) (map[string]interface{}, error) {
	if strings.HasPrefix(path, "/session/") && c.sessionID == "" {
		return nil, core.ErrNoSession
	}

	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.ErrServerUnreachable.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for WebDriver error
	if errValue, ok := result["value"].(map[string]interface{}); ok {
		if errType, ok := errValue["error"].(string); ok {
			msg, _ := errValue["message"].(string)
			return result, mapW3CError(errType, msg)
		}
	}
	if resp.StatusCode >= 400 {
		return result, fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	return result, nil
}

// mapW3CError translates a W3C error code into the core error taxonomy.
func mapW3CError(code, message string) error {
	var base *core.ExecutionError
	switch code {
	case "no such element":
		base = core.ErrNoSuchElement
	case "stale element reference":
		base = core.ErrStaleElement
	case "timeout", "script timeout":
		base = core.ErrWaitTimeout
	case "invalid session id":
		base = core.ErrNoSession
	case "invalid selector", "invalid argument":
		base = core.ErrInvalidSelector
	case "element not interactable", "element click intercepted":
		base = core.ErrElementNotInteractable
	default:
		return core.NewExecutionError(core.ErrCategoryConnection,
			strings.ReplaceAll(code, " ", "_"), fmt.Sprintf("%s: %s", code, message))
	}
	return base.WithMessage(fmt.Sprintf("%s: %s", code, message))
}

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy JSONWP format
	if id, ok := value["ELEMENT"].(string); ok {
		return id
	}
	return ""
}
