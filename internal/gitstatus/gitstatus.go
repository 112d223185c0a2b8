// Package gitstatus reports version-control status for changed-only scans.
package gitstatus

import (
	"os/exec"
	"strings"
)

// ListChangedFiles returns the root-relative slash-separated paths of files
// that are modified, staged, or untracked in the repository at rootPath. A
// missing git binary or a directory outside any repository yields an empty
// list rather than an error, which disables the changed-only filter upstream.
func ListChangedFiles(rootPath string) []string {
	// #nosec G204
	statusCommand := exec.Command("git", "ls-files", "--modified", "--others", "--exclude-standard")
	statusCommand.Dir = rootPath
	statusOutput, commandError := statusCommand.Output()
	if commandError != nil {
		return nil
	}

	var changedFiles []string
	for _, line := range strings.Split(string(statusOutput), "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		changedFiles = append(changedFiles, trimmedLine)
	}
	return changedFiles
}
