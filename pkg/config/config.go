// Package config loads the per-environment settings (sit, uat, ...) used
// by the tests: client sites, credentials and mobile device details.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/jsengine"
)

// Site selects one of a client's URLs.
type Site string

const (
	SiteMember Site = "base"
	SiteAdmin  Site = "bo"
	SiteRoot   Site = "root"
)

// Path is a member site page, relative to base_url. PathTrade is the root.
const (
	PathLogin     = "login"
	PathTrade     = ""
	PathAssets    = "assets"
	PathSignal    = "signal"
	PathMarkets   = "markets"
	PathCalendar  = "calendar"
	PathNews      = "news"
	PathEducation = "education"
)

// Config is an environment file. It is read-only after Load.
type Config struct {
	env  string
	data map[string]interface{}
}

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Mobile holds the device and app identifiers of a client.
type Mobile struct {
	AndroidUDID     string
	AndroidPackage  string
	AndroidActivity string
	IOSUDID         string
	IOSBundleID     string
}

// Load reads <dir>/<env>.yaml (or .yml) and expands ${...} expressions in
// string values.
func Load(dir, env string) (*Config, error) {
	path := filepath.Join(dir, env+".yaml")
	if _, err := os.Stat(path); err != nil {
		if alt := filepath.Join(dir, env+".yml"); fileExists(alt) {
			path = alt
		}
	}

	data, err := os.ReadFile(path) //#nosec G304 -- environment file chosen by the user
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("cannot read config for env %q", env)).WithCause(err)
	}
	return Parse(env, data)
}

// Parse builds a Config from YAML content.
func Parse(env string, content []byte) (*Config, error) {
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid YAML for env %q", env)).WithCause(err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	engine := jsengine.New()
	engine.SetVariable("envName", env)
	expanded, err := expand(engine, data)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("config for env %q", env)).WithCause(err)
	}

	return &Config{env: env, data: expanded.(map[string]interface{})}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expand walks v and expands every string holding "${".
func expand(engine *jsengine.Engine, v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		if !strings.Contains(val, "${") {
			return val, nil
		}
		return engine.ExpandVariables(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			e, err := expand(engine, item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = e
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			e, err := expand(engine, item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	}
	return v, nil
}

// Env returns the environment name the config was loaded for.
func (c *Config) Env() string {
	return c.env
}

// Get looks up a dotted path such as "lirunex.credentials.mt4".
func (c *Config) Get(path string) (interface{}, bool) {
	return lookup(c.data, path)
}

// String returns the value at path formatted as a string, or "".
func (c *Config) String(path string) string {
	return stringAt(c.data, path)
}

// ClientName is the default client, the top-level "client" key.
func (c *Config) ClientName() string {
	return c.String("client")
}

// Client returns the section of the named client. An empty name selects
// ClientName.
func (c *Config) Client(name string) (*ClientConfig, error) {
	if name == "" {
		name = c.ClientName()
	}
	if name == "" {
		return nil, core.ErrMissingRequired.WithMessage("no client configured")
	}
	section, ok := c.data[name].(map[string]interface{})
	if !ok {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("client %q not found in env %q", name, c.env))
	}
	return &ClientConfig{name: name, root: c, data: section}, nil
}

// ClientConfig is one client's section of the environment file.
type ClientConfig struct {
	name string
	root *Config
	data map[string]interface{}
}

// Name returns the client key, e.g. "lirunex".
func (cc *ClientConfig) Name() string {
	return cc.name
}

// Get looks up a dotted path within the client section.
func (cc *ClientConfig) Get(path string) (interface{}, bool) {
	return lookup(cc.data, path)
}

// Credentials returns the login for server (mt4, mt5) and account type
// (demo, live, crm). With root set the root admin login is returned
// instead.
func (cc *ClientConfig) Credentials(server, account string, root bool) Credentials {
	if root {
		return Credentials{
			Username: cc.root.String("user_root"),
			Password: cc.root.String("password"),
		}
	}
	prefix := "credentials." + server + "."
	return Credentials{
		Username: stringAt(cc.data, prefix+"user_"+account),
		Password: stringAt(cc.data, prefix+"password_"+account),
	}
}

// URL returns the site URL. The root admin URL is shared by all clients.
func (cc *ClientConfig) URL(site Site) string {
	if site == SiteRoot {
		return cc.root.String("root_url")
	}
	return stringAt(cc.data, string(site)+"_url")
}

// URLPath returns base_url joined with path. PathTrade is base_url itself.
func (cc *ClientConfig) URLPath(path string) string {
	base := stringAt(cc.data, "base_url")
	if path == PathTrade {
		return base
	}
	return base + "/" + path
}

// Mobile returns the client's mobile section.
func (cc *ClientConfig) Mobile() Mobile {
	return Mobile{
		AndroidUDID:     stringAt(cc.data, "mobile.android_udid"),
		AndroidPackage:  stringAt(cc.data, "mobile.android_package"),
		AndroidActivity: stringAt(cc.data, "mobile.android_activity"),
		IOSUDID:         stringAt(cc.data, "mobile.ios_udid"),
		IOSBundleID:     stringAt(cc.data, "mobile.ios_bundle_id"),
	}
}

func lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = data
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringAt(data map[string]interface{}, path string) string {
	v, ok := lookup(data, path)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	}
	return fmt.Sprintf("%v", v)
}
