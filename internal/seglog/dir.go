package seglog

import (
	"os"
	"path/filepath"
	"strings"
)

// projectIndicators mark a directory as a project root. When one is present
// next to the working directory, logs go to a project-local .termtap/logs
// so that sessions started from different projects never collide.
var projectIndicators = []string{
	".git",
	".termtap",
	"go.mod",
	"package.json",
	"pyproject.toml",
	"Cargo.toml",
	"pom.xml",
}

// ResolveDir decides where session logs live, in priority order: the
// explicit flag value, $TERMTAP_LOG_DIR, a project-local ./.termtap/logs,
// and finally ~/.termtap/logs.
func ResolveDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("TERMTAP_LOG_DIR"); env != "" {
		return env
	}
	cwd, err := os.Getwd()
	if err == nil && isProjectDir(cwd) {
		dir := filepath.Join(cwd, ".termtap", "logs")
		ensureGitignore(cwd)
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "termtap-logs")
	}
	return filepath.Join(home, ".termtap", "logs")
}

func isProjectDir(dir string) bool {
	for _, name := range projectIndicators {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// ensureGitignore appends .termtap/ to the project's .gitignore so local
// session logs never end up in version control. Best effort only.
func ensureGitignore(projectDir string) {
	if _, err := os.Stat(filepath.Join(projectDir, ".git")); err != nil {
		return
	}
	path := filepath.Join(projectDir, ".gitignore")
	content, err := os.ReadFile(path)
	if err == nil && strings.Contains(string(content), ".termtap") {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	var prefix string
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		prefix = "\n"
	}
	_, _ = f.WriteString(prefix + "\n# termtap session logs\n.termtap/\n")
}
