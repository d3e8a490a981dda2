package config

import (
	"os"
	"path/filepath"
	"sync"
)

// HomeEnv overrides the project home.
const HomeEnv = "WT_AUTOMATION_HOME"

var (
	homeOnce sync.Once
	home     string
)

// Home is the project directory holding config/ and .videos/: $WT_AUTOMATION_HOME
// when set, else the nearest directory at or above the working directory that
// has a config/ folder, else the working directory. It is resolved once.
func Home() string {
	homeOnce.Do(func() {
		if dir := os.Getenv(HomeEnv); dir != "" {
			home = dir
			return
		}
		cwd, err := os.Getwd()
		if err != nil {
			home = "."
			return
		}
		home = findHome(cwd)
	})
	return home
}

func findHome(start string) string {
	for dir := start; ; {
		if info, err := os.Stat(filepath.Join(dir, "config")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// ConfigDir holds the <env>.yaml files.
func ConfigDir() string {
	return filepath.Join(Home(), "config")
}

// VideoDir holds mobile screen recordings.
func VideoDir() string {
	return filepath.Join(Home(), ".videos")
}

// ResetVideoDir empties dir (VideoDir when dir is "") and returns it.
func ResetVideoDir(dir string) (string, error) {
	if dir == "" {
		dir = VideoDir()
	}
	if err := os.RemoveAll(dir); err != nil {
		return dir, err
	}
	return dir, os.MkdirAll(dir, 0o755)
}

func resetHome() {
	homeOnce = sync.Once{}
	home = ""
}
