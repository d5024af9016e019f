package engine

import (
	"context"
	"regexp"
	"strings"
)

// shellNames are the foreground process names that mean the pane has
// returned to an idle shell.
var shellNames = map[string]bool{
	"bash": true,
	"zsh":  true,
	"sh":   true,
	"fish": true,
	"dash": true,
	"ksh":  true,
	"tcsh": true,
}

// promptPatterns match common shell prompts at the end of a line.
var promptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\$%>#]\s*$`), // plain sh/bash/zsh prompts
	regexp.MustCompile(`❯\s*$`),       // starship and friends
	regexp.MustCompile(`➜\s*$`),       // oh-my-zsh arrow
}

// paneIdle is the completion predicate: the pane's foreground process is
// a shell AND a prompt idiom sits at the bottom of the visible buffer.
//
// Requiring both closes most of the window between send-keys and the
// command actually spawning: right after dispatch the process is still
// the shell, but the bottom line ends with the echoed command rather
// than a bare prompt.
func (e *Engine) paneIdle(ctx context.Context, target string) (bool, error) {
	cmd, err := e.Mux.CurrentCommand(ctx, target)
	if err != nil {
		return false, err
	}
	if !shellNames[cmd] {
		return false, nil
	}

	lines, err := e.Mux.CapturePane(ctx, target, nil, nil)
	if err != nil {
		return false, err
	}
	return promptAtBottom(lines), nil
}

// promptAtBottom checks the last few non-empty lines for a shell prompt.
func promptAtBottom(lines []string) bool {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	start := end - 3
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:end] {
		for _, p := range promptPatterns {
			if p.MatchString(line) {
				return true
			}
		}
	}
	return false
}
