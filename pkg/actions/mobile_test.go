package actions

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMobile_HideKeyboardFallsBackToBack(t *testing.T) {
	f := newFixture(t, "android")
	f.driver.failKbd = true
	m := NewMobile(f.actions)

	if err := m.HideKeyboard(); err != nil {
		t.Fatalf("HideKeyboard failed: %v", err)
	}
	if len(f.driver.keycodes) != 1 || f.driver.keycodes[0] != 4 {
		t.Errorf("expected back key, got %v", f.driver.keycodes)
	}
}

func TestMobile_HideKeyboard(t *testing.T) {
	f := newFixture(t, "android")
	m := NewMobile(f.actions)

	if err := m.HideKeyboard(); err != nil {
		t.Fatalf("HideKeyboard failed: %v", err)
	}
	if len(f.driver.keycodes) != 0 {
		t.Errorf("no key press expected, got %v", f.driver.keycodes)
	}
}

func TestMobile_HardwareKeys(t *testing.T) {
	f := newFixture(t, "android")
	m := NewMobile(f.actions)

	m.PressHome()
	m.PressBack()
	if len(f.driver.keycodes) != 2 || f.driver.keycodes[0] != 3 || f.driver.keycodes[1] != 4 {
		t.Errorf("keycodes = %v", f.driver.keycodes)
	}
}

func TestMobile_Scroll(t *testing.T) {
	f := newFixture(t, "android")
	f.driver.elements["id|from"] = "a"
	f.driver.elements["id|to"] = "b"
	m := NewMobile(f.actions)

	if err := m.Scroll(context.Background(), ID("from"), ID("to"), 500*time.Millisecond); err != nil {
		t.Fatalf("Scroll failed: %v", err)
	}
	seq := f.driver.actions[0].([]interface{})[0].(map[string]interface{})
	moves := seq["actions"].([]interface{})
	start := moves[0].(map[string]interface{})
	if start["x"].(float64) != 100 || start["y"].(float64) != 125 {
		t.Errorf("unexpected start %v", start)
	}
	if moves[2].(map[string]interface{})["duration"].(float64) != 500 {
		t.Errorf("unexpected duration %v", moves[2])
	}
}

func TestMobile_ScrollToText(t *testing.T) {
	f := newFixture(t, "android")
	sel := `-android uiautomator|new UiScrollable(new UiSelector().scrollable(true)).scrollIntoView(new UiSelector().text("Settings"))`
	f.driver.elements[sel] = "s"
	m := NewMobile(f.actions)

	elem, err := m.ScrollToText(context.Background(), "Settings")
	if err != nil {
		t.Fatalf("ScrollToText failed: %v", err)
	}
	if elem.ID != "s" {
		t.Errorf("ID = %q", elem.ID)
	}
	for _, c := range f.driver.calls {
		if strings.HasSuffix(c, "/displayed") {
			t.Error("presence lookup should not check visibility")
		}
	}
}
