// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Project is the name printed in front of every binary's version line.
const Project = "team-usage-dashboard"

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	execCommand = exec.CommandContext
)

const gitTimeout = 2 * time.Second

func ensureInitialized() {
	once.Do(func() {
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = gitOutput("describe", "--always", "--dirty")
			if Commit == "" {
				Commit = "unknown"
			}
		}
		if Version == "" {
			Version = gitOutput("describe", "--tags", "--abbrev=0")
			if Version == "" {
				Version = "dev"
			}
		}
	})
}

func gitOutput(args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

// Reset clears resolved values so they are looked up again.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

// GetVersion returns the release version, "dev" outside a tagged checkout.
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the commit the binary was built from.
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns the version line printed by -v for binary.
func Info(binary string) string {
	ensureInitialized()
	return fmt.Sprintf("%s %s %s (commit: %s, built: %s, %s/%s)",
		Project, binary, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
