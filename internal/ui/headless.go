package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// HeadlessManager decides whether mug may animate output and prompt the
// user. Without a terminal on stdin, prompts fall back to preset answers.
type HeadlessManager struct {
	forced    *bool
	assumeYes bool
	fd        uintptr
}

// NewHeadlessManager creates a HeadlessManager that inspects os.Stdin.
func NewHeadlessManager() *HeadlessManager {
	return &HeadlessManager{fd: os.Stdin.Fd()}
}

// IsHeadless reports whether the UI runs without a terminal. ForceHeadless
// overrides TTY detection.
func (h *HeadlessManager) IsHeadless() bool {
	if h.forced != nil {
		return *h.forced
	}
	return !isatty.IsTerminal(h.fd) && !isatty.IsCygwinTerminal(h.fd)
}

// ForceHeadless overrides TTY detection. Pass true to force headless mode,
// or false to force interactive mode regardless of TTY state.
func (h *HeadlessManager) ForceHeadless(force bool) {
	h.forced = &force
}

// ClearForce reverts to automatic TTY detection.
func (h *HeadlessManager) ClearForce() {
	h.forced = nil
}

// AssumeYes makes every confirmation succeed without prompting (--yes).
func (h *HeadlessManager) AssumeYes(yes bool) {
	h.assumeYes = yes
}

// AssumesYes reports whether confirmations are skipped.
func (h *HeadlessManager) AssumesYes() bool {
	return h.assumeYes
}
