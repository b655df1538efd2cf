package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// StoreStatus describes how git sees the session database
type StoreStatus struct {
	IsRepo  bool
	Path    string
	Tracked bool
	Ignored bool
}

// Safe reports whether the store cannot end up in a commit by accident
func (s *StoreStatus) Safe() bool {
	return !s.IsRepo || (!s.Tracked && s.Ignored)
}

// IsGitRepo checks if dir is inside a git work tree
func IsGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(dir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(dir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = dir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// CheckStore inspects the store at storePath. Git is queried from the
// directory containing the store.
func CheckStore(storePath string) (*StoreStatus, error) {
	abs, err := filepath.Abs(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", storePath, err)
	}
	dir, name := filepath.Split(abs)

	status := &StoreStatus{Path: storePath}
	if !IsGitRepo(dir) {
		return status, nil
	}
	status.IsRepo = true
	status.Tracked = IsTracked(dir, name)
	status.Ignored = IsIgnored(dir, name)
	return status, nil
}

// FormatStoreStatus formats the check for display. It is empty outside
// a git repository.
func FormatStoreStatus(status *StoreStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("Git:\n")
	switch {
	case status.Tracked:
		result.WriteString(fmt.Sprintf("   error: %s is tracked by git (run: git rm --cached %s)\n", status.Path, status.Path))
	case !status.Ignored:
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add it to .gitignore)\n", status.Path))
	default:
		result.WriteString(fmt.Sprintf("   ok: %s is ignored by git\n", status.Path))
	}
	return result.String()
}
