package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadHead returns the current HEAD commit hash for the repository containing
// startDir. The source tree is often a subdirectory of the checkout, so parent
// directories are searched for .git. It reads .git/HEAD directly and resolves
// symbolic references, avoiding a full repository open for a single stamp.
func ReadHead(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		gitDir := filepath.Join(dir, ".git")
		if info, statErr := os.Stat(gitDir); statErr == nil && info.IsDir() {
			return readRepoHead(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository found above %s", startDir)
		}
		dir = parent
	}
}

// readRepoHead reads .git/HEAD and resolves symbolic references if needed.
func readRepoHead(repoPath string) (string, error) {
	headPath := filepath.Join(repoPath, ".git", "HEAD")
	data, err := os.ReadFile(headPath)
	if err != nil {
		return "", err
	}

	line := strings.TrimSpace(string(data))

	// If HEAD is a symbolic ref (e.g., "ref: refs/heads/main"), resolve it
	if strings.HasPrefix(line, "ref:") {
		ref := strings.TrimSpace(strings.TrimPrefix(line, "ref:"))
		refPath := filepath.Join(repoPath, ".git", filepath.FromSlash(ref))
		if refData, refErr := os.ReadFile(refPath); refErr == nil {
			return strings.TrimSpace(string(refData)), nil
		}
	}

	// Otherwise, HEAD contains the commit hash directly
	return line, nil
}
