package driver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aquariux/wt-automation/pkg/core"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    Target
		wantErr error
	}{
		{"default web", Options{}, Web{Browser: "chrome"}, nil},
		{"firefox grid", Options{Platform: "web", Browser: "Firefox", Grid: true}, Web{Browser: "firefox", Grid: true}, nil},
		{"bad browser", Options{Platform: "web", Browser: "opera"}, nil, core.ErrInvalidConfig},
		{"android", Options{Platform: "Android", UDID: "emulator-5554", AppPackage: "com.aq.trader"},
			Android{UDID: "emulator-5554", AppPackage: "com.aq.trader"}, nil},
		{"android without package", Options{Platform: "android"}, nil, core.ErrMissingRequired},
		{"ios", Options{Platform: "ios", BundleID: "com.aq.trader"}, IOS{BundleID: "com.aq.trader"}, nil},
		{"ios without bundle", Options{Platform: "ios"}, nil, core.ErrMissingRequired},
		{"unknown", Options{Platform: "tizen"}, nil, core.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestWeb_URL(t *testing.T) {
	if got := (Web{Browser: "chrome"}).URL(); got != "http://localhost:9515" {
		t.Errorf("local chrome URL = %q", got)
	}
	if got := (Web{Browser: "chrome", Grid: true}).URL(); got != DefaultGridURL {
		t.Errorf("grid URL = %q", got)
	}
	if got := (Web{Browser: "chrome", Grid: true, ServerURL: "http://hub:4444/wd/hub"}).URL(); got != "http://hub:4444/wd/hub" {
		t.Errorf("override URL = %q", got)
	}
	if got := (Android{}).URL(); got != DefaultAppiumURL {
		t.Errorf("appium URL = %q", got)
	}
}

func TestWeb_ChromeCapabilities(t *testing.T) {
	caps := Web{Browser: "chrome", Headless: true, Grid: true}.Capabilities()

	if caps["browserName"] != "chrome" {
		t.Errorf("browserName = %v", caps["browserName"])
	}
	if caps["se:recordVideo"] != true {
		t.Error("grid sessions should record video")
	}
	opts, ok := caps["goog:chromeOptions"].(map[string]interface{})
	if !ok {
		t.Fatal("missing goog:chromeOptions")
	}
	if got := opts["excludeSwitches"].([]string); !reflect.DeepEqual(got, []string{"enable-logging", "enable-automation"}) {
		t.Errorf("excludeSwitches = %v", got)
	}
	prefs := opts["prefs"].(map[string]interface{})
	if prefs["credentials_enable_service"] != false || prefs["profile.password_manager_enabled"] != false {
		t.Errorf("prefs = %v", prefs)
	}
	if got := opts["args"].([]string); !reflect.DeepEqual(got, []string{"--headless"}) {
		t.Errorf("args = %v", got)
	}
}

func TestWeb_FirefoxCapabilities(t *testing.T) {
	caps := Web{Browser: "firefox"}.Capabilities()
	if _, ok := caps["moz:firefoxOptions"]; ok {
		t.Error("headed firefox should not carry options")
	}
	caps = Web{Browser: "firefox", Headless: true}.Capabilities()
	opts := caps["moz:firefoxOptions"].(map[string]interface{})
	if got := opts["args"].([]string); !reflect.DeepEqual(got, []string{"-headless"}) {
		t.Errorf("args = %v", got)
	}
	if _, ok := caps["se:recordVideo"]; ok {
		t.Error("local sessions should not record video")
	}
}

func TestAndroid_Capabilities(t *testing.T) {
	caps := Android{UDID: "R58M", AppPackage: "com.aq.trader"}.Capabilities()

	want := map[string]interface{}{
		"platformName":                "Android",
		"appium:automationName":       "UiAutomator2",
		"appium:udid":                 "R58M",
		"appium:appPackage":           "com.aq.trader",
		"appium:appActivity":          ".MainActivity",
		"appium:appWaitActivity":      ".MainActivity",
		"appium:autoGrantPermissions": true,
		"appium:noReset":              true,
		"appium:fullReset":            false,
		"appium:newCommandTimeout":    300,
		"appium:shouldTerminateApp":   true,
	}
	if !reflect.DeepEqual(caps, want) {
		t.Errorf("caps = %#v", caps)
	}
}

func TestIOS_Capabilities(t *testing.T) {
	caps := IOS{UDID: "0000-1111", BundleID: "com.aq.trader", NewCommandTimeout: 60}.Capabilities()
	if caps["appium:automationName"] != "XCUITest" {
		t.Errorf("automationName = %v", caps["appium:automationName"])
	}
	if caps["appium:bundleId"] != "com.aq.trader" {
		t.Errorf("bundleId = %v", caps["appium:bundleId"])
	}
	if caps["appium:newCommandTimeout"] != 60 {
		t.Errorf("newCommandTimeout = %v", caps["appium:newCommandTimeout"])
	}
}
