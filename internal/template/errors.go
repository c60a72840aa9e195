// Package template renders the embedded source and build templates of a
// mug project. It knows nothing about the project model beyond the data
// handed to Render.
package template

import (
	"errors"

	"github.com/crolly/mug/internal/defs"
)

// Sentinel errors for template operations.
var (
	// ErrTemplateNotFound indicates the named template does not exist.
	ErrTemplateNotFound = errors.New("template: not found")

	// ErrMissingTemplateKey indicates the data lacks a key the template uses.
	ErrMissingTemplateKey = errors.New("template: missing key")

	// ErrUnexpandedToken indicates template actions survived rendering.
	ErrUnexpandedToken = errors.New("template: unexpanded token")
)

const (
	regionBeginToken = defs.RegionBegin
	regionEndToken   = defs.RegionEnd
)
