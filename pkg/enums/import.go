package enums

import "fmt"

// ImportStatus is the state of a client import run.
type ImportStatus string

const (
	ImportStatusIdle       ImportStatus = "idle"
	ImportStatusParsing    ImportStatus = "parsing"
	ImportStatusValidating ImportStatus = "validating"
	ImportStatusImporting  ImportStatus = "importing"
	ImportStatusComplete   ImportStatus = "complete"
	ImportStatusError      ImportStatus = "error"
	ImportStatusCancelled  ImportStatus = "cancelled"
)

// importStatusTransitions is the linear import state machine with its exit fork.
var importStatusTransitions = map[ImportStatus][]ImportStatus{
	ImportStatusIdle:       {ImportStatusParsing},
	ImportStatusParsing:    {ImportStatusValidating, ImportStatusError},
	ImportStatusValidating: {ImportStatusImporting, ImportStatusError},
	ImportStatusImporting:  {ImportStatusComplete, ImportStatusError, ImportStatusCancelled},
	ImportStatusComplete:   {ImportStatusIdle},
	ImportStatusError:      {ImportStatusIdle},
	ImportStatusCancelled:  {ImportStatusIdle},
}

// String implements fmt.Stringer.
func (i ImportStatus) String() string {
	return string(i)
}

// IsTerminal reports whether the run has finished in this status.
func (i ImportStatus) IsTerminal() bool {
	switch i {
	case ImportStatusComplete, ImportStatusError, ImportStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the target status is reachable from i.
func (i ImportStatus) CanTransitionTo(target ImportStatus) bool {
	for _, candidate := range importStatusTransitions[i] {
		if candidate == target {
			return true
		}
	}
	return false
}

// DuplicateMode decides what happens to rows whose phone already exists.
type DuplicateMode string

const (
	DuplicateModeIgnore DuplicateMode = "ignore"
	DuplicateModeUpdate DuplicateMode = "update"
)

// IsValid reports whether the value is a known DuplicateMode.
func (d DuplicateMode) IsValid() bool {
	return d == DuplicateModeIgnore || d == DuplicateModeUpdate
}

// ParseDuplicateMode converts raw input into a DuplicateMode.
func ParseDuplicateMode(value string) (DuplicateMode, error) {
	switch DuplicateMode(value) {
	case DuplicateModeIgnore:
		return DuplicateModeIgnore, nil
	case DuplicateModeUpdate:
		return DuplicateModeUpdate, nil
	}
	return "", fmt.Errorf("invalid duplicate mode %q", value)
}
