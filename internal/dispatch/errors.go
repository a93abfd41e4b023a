package dispatch

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection rejects a request without a champion or skin, or with a skin
// name that would escape the champion directory.
var ErrInvalidSelection = errors.New("invalid skin selection")

// InstallError means the skin archive could not be imported, even after the
// fallback directory was tried. Path is the last archive attempted.
type InstallError struct {
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s: %v", e.Path, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// ProfileError means the skin was imported but the overlay profile could not be built.
type ProfileError struct {
	Skin string
	Err  error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("failed to save profile for %s: %v", e.Skin, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}
