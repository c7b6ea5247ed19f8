package changespec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amonks/changespec/internal/validation"
)

var (
	// ErrInvalidTransition is returned when a (status, event) pair has no
	// entry in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownStatus is returned when a status is outside the enumeration.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrEmptyName is returned when a ChangeSpec name is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidName is returned when a name cannot be used as a file or
	// command argument.
	ErrInvalidName = errors.New("invalid changespec name")

	// ErrEmptyProject is returned when a ChangeSpec has no project.
	ErrEmptyProject = errors.New("project cannot be empty")

	// ErrSelfParent is returned when a ChangeSpec names itself as parent.
	ErrSelfParent = errors.New("changespec cannot be its own parent")

	// ErrProjectMismatch is returned when a stored ChangeSpec names a
	// project other than the file it was loaded from.
	ErrProjectMismatch = errors.New("changespec project does not match its project file")

	// ErrDuplicateName is returned when two ChangeSpecs share a name.
	ErrDuplicateName = errors.New("duplicate changespec name")

	// ErrNotFound is returned when a ChangeSpec with the given name doesn't exist.
	ErrNotFound = errors.New("changespec not found")
)

func unknownStatus(status Status) error {
	return validation.FormatInvalidValueError(ErrUnknownStatus, status, ValidStatuses())
}

// ValidateName checks that a name is usable as an identifier.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if name != strings.TrimSpace(name) || strings.ContainsAny(name, "/\\\n\t") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateChangeSpec checks if a ChangeSpec is well formed.
func ValidateChangeSpec(c *ChangeSpec) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if err := ValidateName(c.Project); err != nil {
		if errors.Is(err, ErrEmptyName) {
			return ErrEmptyProject
		}
		return err
	}
	if !c.Status.IsValid() {
		return unknownStatus(c.Status)
	}
	if c.Parent != "" {
		if err := ValidateName(c.Parent); err != nil {
			return fmt.Errorf("parent: %w", err)
		}
	}
	if c.Parent == c.Name {
		return fmt.Errorf("%w: %q", ErrSelfParent, c.Name)
	}
	return nil
}
