package executor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aquariux/wt-automation/pkg/driver"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/report"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// attachVideos adds a "Screen Recording" attachment per session: a link to
// the grid recording for web, the Appium recording for mobile. Errors are
// logged and never change the test status.
func (r *Runner) attachVideos(tc *TestContext) {
	for _, p := range tc.Sessions.Platforms() {
		client, ok := tc.Sessions.Get(p)
		if !ok {
			continue
		}

		var err error
		switch {
		case p == driver.PlatformWeb && r.opts.Grid:
			err = r.attachGridVideo(tc.Sink, client)
		case p != driver.PlatformWeb && tc.record:
			err = r.attachScreenRecording(tc.Sink, client)
		default:
			continue
		}
		if err != nil {
			logger.Error("Failed to handle video recording: %v", err)
			continue
		}
		logger.Debug("Video recording attached to Allure report for %s test", p)
	}
}

// attachGridVideo links the recording Selenium Grid uploads per session.
func (r *Runner) attachGridVideo(sink *report.Writer, client *webdriver.Client) error {
	link := fmt.Sprintf(`<a href="%s/videos/%s.mp4">Session Video</a>`, driver.GridVideoURL, client.SessionID())
	return sink.Attach(report.AttachmentVideo, "text/html", []byte(link))
}

// attachScreenRecording stops the Appium recording, saves it to the video
// folder and attaches the file.
func (r *Runner) attachScreenRecording(sink *report.Writer, client *webdriver.Client) error {
	video, err := client.StopRecordingScreen()
	if err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}
	if len(video) == 0 {
		return fmt.Errorf("empty recording")
	}

	if err := os.MkdirAll(r.opts.VideoDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.opts.VideoDir, fmt.Sprintf("test_video_%d.mp4", r.now().Unix()))
	if err := os.WriteFile(path, video, 0o644); err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	return sink.AttachFile(report.AttachmentVideo, "video/mp4", path)
}
