// Package fake generates random test data: account ids, passwords, emails
// and phone numbers shaped like the ones the WebTrader sign-up forms accept.
package fake

import (
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// USAreaCodes are area codes of major US cities.
var USAreaCodes = []string{"212", "213", "310", "312", "404", "408", "415", "469", "512", "617", "702", "713", "714", "818", "919"}

// ThaiMobilePrefixes are the AIS, DTAC and True mobile prefixes.
var ThaiMobilePrefixes = []string{
	"061", "062", "063", "064", "065",
	"081", "082", "083", "084", "085", "086", "087", "088", "089",
	"091", "092", "093", "094", "095", "096", "097", "098", "099",
}

// EmailDomains are picked from for random emails.
var EmailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"icloud.com", "aol.com", "proton.me", "aquriux.com",
}

// Generator produces random values. It is safe for concurrent use.
type Generator struct {
	f *gofakeit.Faker
}

// New returns a generator with a fixed seed.
func New(seed int64) *Generator {
	return &Generator{f: gofakeit.New(seed)}
}

var std = New(time.Now().UnixNano())

// UserID returns 10 random digits.
func (g *Generator) UserID() string {
	return g.Digits(10)
}

// Password returns 12 characters with at least one upper case letter,
// lower case letter, digit and special character.
func (g *Generator) Password() string {
	return g.f.Password(true, true, true, true, false, 12)
}

// Email returns a random 8 to 12 character mailbox at a common domain.
func (g *Generator) Email() string {
	return g.f.Regex(`[a-z0-9]{8,12}`) + "@" + g.f.RandomString(EmailDomains)
}

// InvalidEmail returns 10 characters with no @ or domain.
func (g *Generator) InvalidEmail() string {
	return g.f.Regex(`[a-z0-9]{10}`)
}

// Phone returns a local mobile number for the dial code. Unknown codes
// get 10 random digits.
func (g *Generator) Phone(dialCode int) string {
	switch dialCode {
	case 84:
		return g.f.Numerify("09########")
	case 65:
		return g.f.Numerify("9#######")
	case 1:
		return g.f.RandomString(USAreaCodes) + g.f.Numerify("#######")
	case 86:
		return g.f.Numerify("13#########")
	case 66:
		return g.f.RandomString(ThaiMobilePrefixes) + g.f.Numerify("#######")
	default:
		return g.Digits(10)
	}
}

// Username returns "Auto " followed by 8 letters or digits.
func (g *Generator) Username() string {
	return "Auto " + g.f.Regex(`[A-Za-z0-9]{8}`)
}

// Digits returns n random digits, or "" when n <= 0.
func (g *Generator) Digits(n int) string {
	if n <= 0 {
		return ""
	}
	return g.f.Numerify(strings.Repeat("#", n))
}

// Package level helpers use a time-seeded generator.

func UserID() string            { return std.UserID() }
func Password() string          { return std.Password() }
func Email() string             { return std.Email() }
func InvalidEmail() string      { return std.InvalidEmail() }
func Phone(dialCode int) string { return std.Phone(dialCode) }
func Username() string          { return std.Username() }
func Digits(n int) string       { return std.Digits(n) }

// PhoneString is Phone for a dial code given as text, e.g. "+84".
func PhoneString(dialCode string) string {
	code, err := strconv.Atoi(strings.TrimPrefix(dialCode, "+"))
	if err != nil {
		code = -1
	}
	return std.Phone(code)
}
