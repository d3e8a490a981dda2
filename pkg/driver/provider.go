package driver

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// PageLoadTimeout is applied to every web session.
const PageLoadTimeout = 10 * time.Second

// minAppiumVersion is the first release that accepts W3C-only capabilities.
var minAppiumVersion = semver.MustParse("2.0.0")

// Provider starts sessions and registers them.
type Provider struct {
	registry *Registry
}

// NewProvider creates a provider that registers sessions in r.
func NewProvider(r *Registry) *Provider {
	return &Provider{registry: r}
}

// Start opens a session for the target. A second Start for the same
// platform returns the already open session.
func (p *Provider) Start(t Target) (*webdriver.Client, error) {
	if c, ok := p.registry.Get(t.Platform()); ok {
		return c, nil
	}

	client := webdriver.NewClient(t.URL())

	if t.Platform() != PlatformWeb {
		if err := checkAppium(client); err != nil {
			return nil, err
		}
	}

	logger.Info("Starting %s session at %s", t.Platform(), t.URL())
	if err := client.Connect(t.Capabilities()); err != nil {
		return nil, fmt.Errorf("start %s session: %w", t.Platform(), err)
	}

	if t.Platform() == PlatformWeb {
		setupWindow(client)
	}

	p.registry.Add(t.Platform(), client)
	logger.Info("Session %s started on %s", client.SessionID(), client.Platform())
	return client, nil
}

// checkAppium queries /status and warns when the server is older than 2.0.
func checkAppium(client *webdriver.Client) error {
	st, err := client.Status()
	if err != nil {
		return core.ErrServerUnreachable.WithCause(err)
	}
	if st.Version == "" {
		logger.Warn("Appium server did not report a version")
		return nil
	}

	v, err := semver.NewVersion(st.Version)
	if err != nil {
		logger.Warn("Unparseable Appium version %q: %v", st.Version, err)
		return nil
	}
	if v.LessThan(minAppiumVersion) {
		logger.Warn("Appium %s is older than %s, W3C capabilities may be rejected", v, minAppiumVersion)
	} else {
		logger.Debug("Appium server version %s", v)
	}
	return nil
}

func setupWindow(client *webdriver.Client) {
	if err := client.MaximizeWindow(); err != nil {
		logger.Warn("Failed to maximize window: %v", err)
	}
	if err := client.SetTimeouts(0, PageLoadTimeout); err != nil {
		logger.Warn("Failed to set page load timeout: %v", err)
	}
	if err := client.SetWindowPosition(2000, 0); err != nil {
		logger.Warn("Failed to set window position: %v", err)
	}
}
