// Package driver starts WebDriver sessions for the supported platforms and
// keeps track of them for the duration of a test.
package driver

import (
	"fmt"
	"strings"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
)

// Platform names a session kind.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Default endpoints.
const (
	DefaultGridURL   = "https://selenium-grid.aquariux.dev/wd/hub"
	DefaultAppiumURL = "http://localhost:4723/wd/hub"
	GridVideoURL     = "https://selenium-grid-videos.aquariux.dev"
)

var localDriverURLs = map[string]string{
	"chrome":  "http://localhost:9515",
	"firefox": "http://localhost:4444",
	"safari":  "http://localhost:4445",
}

// Target is a resolved session request. It is one of Web, Android or IOS.
type Target interface {
	Platform() Platform
	URL() string
	Capabilities() map[string]interface{}
	isTarget()
}

// Web is a browser session, local or on Selenium Grid.
type Web struct {
	Browser  string // chrome, firefox or safari
	Headless bool
	Grid     bool
	// ServerURL overrides the grid or local driver endpoint.
	ServerURL string
}

// Android is an Appium UiAutomator2 session.
type Android struct {
	UDID              string
	AppPackage        string
	AppActivity       string
	ServerURL         string
	NewCommandTimeout int
}

// IOS is an Appium XCUITest session.
type IOS struct {
	UDID              string
	BundleID          string
	ServerURL         string
	NewCommandTimeout int
}

func (Web) isTarget()     {}
func (Android) isTarget() {}
func (IOS) isTarget()     {}

// Platform implements Target.
func (Web) Platform() Platform { return PlatformWeb }

// Platform implements Target.
func (Android) Platform() Platform { return PlatformAndroid }

// Platform implements Target.
func (IOS) Platform() Platform { return PlatformIOS }

// URL returns the grid hub, the local driver endpoint or the override.
func (w Web) URL() string {
	if w.ServerURL != "" {
		return w.ServerURL
	}
	if w.Grid {
		return DefaultGridURL
	}
	return localDriverURLs[w.Browser]
}

// URL returns the Appium endpoint.
func (a Android) URL() string {
	if a.ServerURL != "" {
		return a.ServerURL
	}
	return DefaultAppiumURL
}

// URL returns the Appium endpoint.
func (i IOS) URL() string {
	if i.ServerURL != "" {
		return i.ServerURL
	}
	return DefaultAppiumURL
}

// Capabilities builds the W3C capabilities for the browser.
func (w Web) Capabilities() map[string]interface{} {
	caps := map[string]interface{}{"browserName": w.Browser}

	switch w.Browser {
	case "chrome":
		opts := map[string]interface{}{
			"excludeSwitches": []string{"enable-logging", "enable-automation"},
			"prefs": map[string]interface{}{
				"credentials_enable_service":       false,
				"profile.password_manager_enabled": false,
			},
		}
		if w.Headless {
			opts["args"] = []string{"--headless"}
		}
		caps["goog:chromeOptions"] = opts
	case "firefox":
		if w.Headless {
			caps["moz:firefoxOptions"] = map[string]interface{}{"args": []string{"-headless"}}
		}
	case "safari":
		if w.Headless {
			logger.Warn("safari has no headless mode, starting a regular window")
		}
	}

	if w.Grid {
		caps["se:recordVideo"] = true
	}
	return caps
}

// Capabilities builds the Appium capabilities for the device.
func (a Android) Capabilities() map[string]interface{} {
	activity := a.AppActivity
	if activity == "" {
		activity = ".MainActivity"
	}
	return map[string]interface{}{
		"platformName":                "Android",
		"appium:automationName":       "UiAutomator2",
		"appium:udid":                 a.UDID,
		"appium:appPackage":           a.AppPackage,
		"appium:appActivity":          activity,
		"appium:appWaitActivity":      activity,
		"appium:autoGrantPermissions": true,
		"appium:noReset":              true,
		"appium:fullReset":            false,
		"appium:newCommandTimeout":    commandTimeout(a.NewCommandTimeout),
		"appium:shouldTerminateApp":   true,
	}
}

// Capabilities builds the Appium capabilities for the device.
func (i IOS) Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"platformName":             "iOS",
		"appium:automationName":    "XCUITest",
		"appium:udid":              i.UDID,
		"appium:bundleId":          i.BundleID,
		"appium:noReset":           true,
		"appium:newCommandTimeout": commandTimeout(i.NewCommandTimeout),
	}
}

func commandTimeout(v int) int {
	if v <= 0 {
		return 300
	}
	return v
}

// Options are the raw session settings, usually from flags and config.
type Options struct {
	Platform  string
	Browser   string
	Headless  bool
	Grid      bool
	ServerURL string

	UDID        string
	AppPackage  string
	AppActivity string
	BundleID    string
}

// ParseTarget resolves options into a Target once, at session start.
func ParseTarget(o Options) (Target, error) {
	switch Platform(strings.ToLower(o.Platform)) {
	case PlatformWeb, "":
		browser := strings.ToLower(o.Browser)
		if browser == "" {
			browser = "chrome"
		}
		if _, ok := localDriverURLs[browser]; !ok {
			return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid browser value: %q", o.Browser))
		}
		return Web{Browser: browser, Headless: o.Headless, Grid: o.Grid, ServerURL: o.ServerURL}, nil

	case PlatformAndroid:
		if o.AppPackage == "" {
			return nil, core.ErrMissingRequired.WithMessage("android target requires an app package")
		}
		return Android{
			UDID:        o.UDID,
			AppPackage:  o.AppPackage,
			AppActivity: o.AppActivity,
			ServerURL:   o.ServerURL,
		}, nil

	case PlatformIOS:
		if o.BundleID == "" {
			return nil, core.ErrMissingRequired.WithMessage("ios target requires a bundle id")
		}
		return IOS{UDID: o.UDID, BundleID: o.BundleID, ServerURL: o.ServerURL}, nil
	}
	return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid platform: %q", o.Platform))
}
