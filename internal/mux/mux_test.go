package mux

import (
	"errors"
	"testing"
)

func TestFromName(t *testing.T) {
	m, err := FromName("tmux")
	if err != nil {
		t.Fatalf("FromName(tmux): %v", err)
	}
	if m.Name() != "tmux" {
		t.Errorf("name: got %q, want tmux", m.Name())
	}

	if _, err := FromName("screen"); err == nil {
		t.Error("expected error for unknown multiplexer")
	}
	if _, err := FromName("zellij"); err == nil {
		t.Error("zellij is not implemented yet; expected error")
	}
}

func TestStderrMatchers(t *testing.T) {
	tests := []struct {
		msg        string
		notFound   bool
		noServer   bool
	}{
		{"exit status 1: can't find session: =work", true, false},
		{"exit status 1: can't find pane: %5", true, false},
		{"exit status 1: no server running on /tmp/tmux-1000/default", false, true},
		{"exit status 1: error connecting to /tmp/tmux-1000/default (No such file or directory)", false, true},
		{"exit status 1: unknown command: frobnicate", false, false},
	}
	for _, tt := range tests {
		err := errors.New(tt.msg)
		if got := isNotFound(err); got != tt.notFound {
			t.Errorf("isNotFound(%q): got %v, want %v", tt.msg, got, tt.notFound)
		}
		if got := isNoServer(err); got != tt.noServer {
			t.Errorf("isNoServer(%q): got %v, want %v", tt.msg, got, tt.noServer)
		}
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/work.log", "'/tmp/work.log'"},
		{"/tmp/my logs/a.log", "'/tmp/my logs/a.log'"},
		{"/tmp/o'brien.log", `'/tmp/o'\''brien.log'`},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
