package webdriver

import "fmt"

// Element is a reference to a live element in a session.
type Element struct {
	ID     string
	client *Client
}

// NewElement binds an element ID to a client.
func NewElement(c *Client, id string) *Element {
	return &Element{ID: id, client: c}
}

// String implements fmt.Stringer.
func (e *Element) String() string {
	return fmt.Sprintf("element(%s)", e.ID)
}

// Click clicks the element using the WebDriver standard endpoint.
func (e *Element) Click() error {
	_, err := e.client.post(e.client.elementPath(e.ID)+"/click", nil)
	return err
}

// Clear clears the element's text.
func (e *Element) Clear() error {
	_, err := e.client.post(e.client.elementPath(e.ID)+"/clear", nil)
	return err
}

// SendKeys types text into the element.
func (e *Element) SendKeys(text string) error {
	_, err := e.client.post(e.client.elementPath(e.ID)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}

// Text returns the element's visible text.
func (e *Element) Text() (string, error) {
	resp, err := e.client.get(e.client.elementPath(e.ID) + "/text")
	if err != nil {
		return "", err
	}
	text, _ := resp["value"].(string)
	return text, nil
}

// Attribute returns an attribute value. A missing attribute yields ok=false.
func (e *Element) Attribute(name string) (value string, ok bool, err error) {
	resp, err := e.client.get(e.client.elementPath(e.ID) + "/attribute/" + name)
	if err != nil {
		return "", false, err
	}
	switch v := resp["value"].(type) {
	case string:
		return v, true, nil
	case nil:
		return "", false, nil
	default:
		return fmt.Sprintf("%v", v), true, nil
	}
}

// IsDisplayed checks if the element is visible.
func (e *Element) IsDisplayed() (bool, error) {
	resp, err := e.client.get(e.client.elementPath(e.ID) + "/displayed")
	if err != nil {
		return false, err
	}
	displayed, _ := resp["value"].(bool)
	return displayed, nil
}

// IsEnabled checks if the element is enabled.
func (e *Element) IsEnabled() (bool, error) {
	resp, err := e.client.get(e.client.elementPath(e.ID) + "/enabled")
	if err != nil {
		return false, err
	}
	enabled, _ := resp["value"].(bool)
	return enabled, nil
}

// Rect returns the element's position and size.
func (e *Element) Rect() (x, y, w, h int, err error) {
	resp, err := e.client.get(e.client.elementPath(e.ID) + "/rect")
	if err != nil {
		return 0, 0, 0, 0, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("invalid rect response")
	}

	xf, _ := value["x"].(float64)
	yf, _ := value["y"].(float64)
	wf, _ := value["width"].(float64)
	hf, _ := value["height"].(float64)
	return int(xf), int(yf), int(wf), int(hf), nil
}

// Center returns the center point of the element.
func (e *Element) Center() (int, int, error) {
	x, y, w, h, err := e.Rect()
	if err != nil {
		return 0, 0, err
	}
	return x + w/2, y + h/2, nil
}
