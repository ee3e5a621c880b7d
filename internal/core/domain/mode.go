package domain

import "fmt"

// FailureMode selects the behavior of the failure-injected validator.
type FailureMode string

const (
	ModeNormal FailureMode = "normal"
	ModeSlow   FailureMode = "slow"
	ModeDown   FailureMode = "down"
	ModeError  FailureMode = "error"
)

// ParseFailureMode validates a raw mode string against the bounded enum.
func ParseFailureMode(s string) (FailureMode, error) {
	switch FailureMode(s) {
	case ModeNormal, ModeSlow, ModeDown, ModeError:
		return FailureMode(s), nil
	}
	return "", fmt.Errorf("unknown failure mode: %q", s)
}
