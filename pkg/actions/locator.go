package actions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Strategy is a locator strategy understood by Selenium or Appium.
type Strategy string

const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByXPath           Strategy = "xpath"
	ByCSS             Strategy = "css selector"
	ByClassName       Strategy = "class name"
	ByTagName         Strategy = "tag name"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"

	ByAccessibilityID    Strategy = "accessibility id"
	ByAndroidUIAutomator Strategy = "-android uiautomator"
	ByIOSPredicate       Strategy = "-ios predicate string"
	ByIOSClassChain      Strategy = "-ios class chain"
)

// Locator identifies an element. Values are immutable; Format returns a copy.
type Locator struct {
	By    Strategy
	Value string
}

// ID is shorthand for Locator{ByID, value}.
func ID(value string) Locator { return Locator{By: ByID, Value: value} }

// XPath is shorthand for Locator{ByXPath, value}.
func XPath(value string) Locator { return Locator{By: ByXPath, Value: value} }

// CSS is shorthand for Locator{ByCSS, value}.
func CSS(value string) Locator { return Locator{By: ByCSS, Value: value} }

// String renders the locator as "(by, value)".
func (l Locator) String() string {
	return fmt.Sprintf("(%s, %s)", l.By, l.Value)
}

var placeholderRe = regexp.MustCompile(`\{(\d*)\}`)

// Format fills positional placeholders in the value. Both "{}" (sequential)
// and "{0}" (indexed) placeholders are supported; a value without braces but
// with printf verbs is formatted with fmt.Sprintf.
func (l Locator) Format(args ...interface{}) Locator {
	if len(args) == 0 {
		return l
	}

	if !placeholderRe.MatchString(l.Value) {
		if strings.Contains(l.Value, "%") {
			l.Value = fmt.Sprintf(l.Value, args...)
		}
		return l
	}

	next := 0
	l.Value = placeholderRe.ReplaceAllStringFunc(l.Value, func(m string) string {
		idx := next
		if inner := m[1 : len(m)-1]; inner != "" {
			n, err := strconv.Atoi(inner)
			if err != nil {
				return m
			}
			idx = n
		} else {
			next++
		}
		if idx >= len(args) {
			return m
		}
		return fmt.Sprint(args[idx])
	})
	return l
}

// cssQuote escapes a value for a double-quoted css attribute selector.
var cssQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// wire converts strategies W3C browsers do not accept into css selectors.
// Appium sessions accept every strategy as is.
func (l Locator) wire(platform string) (string, string) {
	if platform != "web" {
		return string(l.By), l.Value
	}
	switch l.By {
	case ByID:
		return string(ByCSS), `[id="` + cssQuote.Replace(l.Value) + `"]`
	case ByName:
		return string(ByCSS), `[name="` + cssQuote.Replace(l.Value) + `"]`
	case ByClassName:
		return string(ByCSS), "." + l.Value
	}
	return string(l.By), l.Value
}
