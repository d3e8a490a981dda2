package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquariux/wt-automation/pkg/core"
)

const sitYAML = `
client: lirunex
user_root: root_admin
password: rootpass
root_url: https://root.sit.aquariux.dev
timeouts:
  explicit: 10
lirunex:
  base_url: https://lirunex.sit.aquariux.dev
  bo_url: https://bo-lirunex.sit.aquariux.dev
  credentials:
    mt4:
      user_demo: "1000001"
      password_demo: demo4
      user_live: "2000001"
      password_live: live4
    mt5:
      user_demo: 3000001
      password_demo: demo5
  mobile:
    android_udid: R5CWA20BQ9P
    android_package: com.aquariux.wt.sit.lirunex
transaction_cloud:
  base_url: https://tc.sit.aquariux.dev
  credentials:
    mt4:
      user_live: tc-live
      password_live: "${env('WT_TC_PASSWORD', 'fallback')}"
`

func writeEnv(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeEnv(t, "sit.yaml", sitYAML)

	cfg, err := Load(dir, "sit")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env() != "sit" {
		t.Errorf("Env() = %q", cfg.Env())
	}
	if cfg.ClientName() != "lirunex" {
		t.Errorf("ClientName() = %q", cfg.ClientName())
	}
	if got := cfg.String("timeouts.explicit"); got != "10" {
		t.Errorf("timeouts.explicit = %q", got)
	}
	if _, ok := cfg.Get("lirunex.credentials.mt4"); !ok {
		t.Error("nested section should be found")
	}
	if _, ok := cfg.Get("lirunex.missing.key"); ok {
		t.Error("missing path should not be found")
	}
	if got := cfg.String("user_root.deeper"); got != "" {
		t.Errorf("path through a scalar = %q", got)
	}
}

func TestLoad_YmlExtension(t *testing.T) {
	dir := writeEnv(t, "uat.yml", "client: lirunex\n")

	cfg, err := Load(dir, "uat")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClientName() != "lirunex" {
		t.Errorf("ClientName() = %q", cfg.ClientName())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "prod")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse("sit", []byte("client: [unclosed"))
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse("sit", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.String("client") != "" {
		t.Error("empty config should have no client")
	}
}

func TestParse_ExpandsExpressions(t *testing.T) {
	t.Setenv("WT_TC_PASSWORD", "from-env")

	cfg, err := Parse("sit", []byte(sitYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tc, err := cfg.Client("transaction_cloud")
	if err != nil {
		t.Fatal(err)
	}
	if got := tc.Credentials("mt4", "live", false).Password; got != "from-env" {
		t.Errorf("expanded password = %q", got)
	}
}

func TestParse_ExpandsEnvName(t *testing.T) {
	cfg, err := Parse("uat", []byte("base: https://${envName}.aquariux.dev\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.String("base"); got != "https://uat.aquariux.dev" {
		t.Errorf("base = %q", got)
	}
}

func TestParse_BadExpression(t *testing.T) {
	_, err := Parse("sit", []byte("users:\n  - ${nope.nope}\n"))
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestClient(t *testing.T) {
	cfg, err := Parse("sit", []byte(sitYAML))
	if err != nil {
		t.Fatal(err)
	}

	c, err := cfg.Client("")
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if c.Name() != "lirunex" {
		t.Errorf("Name() = %q", c.Name())
	}

	tests := []struct {
		name    string
		server  string
		account string
		root    bool
		want    Credentials
	}{
		{"mt4 demo", "mt4", "demo", false, Credentials{"1000001", "demo4"}},
		{"mt4 live", "mt4", "live", false, Credentials{"2000001", "live4"}},
		{"numeric user", "mt5", "demo", false, Credentials{"3000001", "demo5"}},
		{"missing account", "mt5", "crm", false, Credentials{}},
		{"root", "mt4", "demo", true, Credentials{"root_admin", "rootpass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Credentials(tt.server, tt.account, tt.root); got != tt.want {
				t.Errorf("Credentials = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClient_URLs(t *testing.T) {
	cfg, _ := Parse("sit", []byte(sitYAML))
	c, _ := cfg.Client("lirunex")

	if got := c.URL(SiteMember); got != "https://lirunex.sit.aquariux.dev" {
		t.Errorf("URL(member) = %q", got)
	}
	if got := c.URL(SiteAdmin); got != "https://bo-lirunex.sit.aquariux.dev" {
		t.Errorf("URL(admin) = %q", got)
	}
	if got := c.URL(SiteRoot); got != "https://root.sit.aquariux.dev" {
		t.Errorf("URL(root) = %q", got)
	}
	if got := c.URLPath(PathTrade); got != "https://lirunex.sit.aquariux.dev" {
		t.Errorf("URLPath(trade) = %q", got)
	}
	if got := c.URLPath(PathLogin); got != "https://lirunex.sit.aquariux.dev/login" {
		t.Errorf("URLPath(login) = %q", got)
	}
}

func TestClient_Mobile(t *testing.T) {
	cfg, _ := Parse("sit", []byte(sitYAML))
	c, _ := cfg.Client("lirunex")

	m := c.Mobile()
	if m.AndroidUDID != "R5CWA20BQ9P" || m.AndroidPackage != "com.aquariux.wt.sit.lirunex" {
		t.Errorf("Mobile() = %+v", m)
	}
	if m.IOSBundleID != "" {
		t.Errorf("IOSBundleID = %q, want empty", m.IOSBundleID)
	}
}

func TestClient_Errors(t *testing.T) {
	cfg, _ := Parse("sit", []byte(sitYAML))
	if _, err := cfg.Client("unknown"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("unknown client err = %v", err)
	}

	empty, _ := Parse("sit", []byte("root_url: x\n"))
	if _, err := empty.Client(""); !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("no client err = %v", err)
	}
}
