//go:build !darwin

package platform

import (
	"fmt"

	"goxviet/internal/synth"
)

func native() Services {
	return Services{
		Tap:         unavailableTap{},
		Poster:      unavailablePoster{},
		AX:          unavailableAX{},
		Permission:  unavailablePermission{},
		InputSource: Latin{},
		KeyState:    NoShift{},
		Workspace:   unavailableWorkspace{},
	}
}

type unavailableTap struct{}

func (unavailableTap) Start(Sink) error { return fmt.Errorf("event tap: %w", ErrUnavailable) }
func (unavailableTap) Stop() error      { return nil }
func (unavailableTap) Running() bool    { return false }

type unavailablePoster struct{}

func (unavailablePoster) Post(synth.Event) error { return fmt.Errorf("post: %w", ErrUnavailable) }

type unavailableAX struct{}

func (unavailableAX) FocusedElement() (Element, error) {
	return nil, fmt.Errorf("focused element: %w", ErrUnavailable)
}

func (unavailableAX) FrontmostAppID() (string, error) {
	return "", fmt.Errorf("frontmost app: %w", ErrUnavailable)
}

type unavailablePermission struct{}

func (unavailablePermission) Trusted() bool { return false }
func (unavailablePermission) Prompt() bool  { return false }

type unavailableWorkspace struct{}

func (unavailableWorkspace) Watch(func(string)) (func(), error) {
	return func() {}, nil
}
