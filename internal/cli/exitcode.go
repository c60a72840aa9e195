package cli

import (
	"errors"

	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/ui"
)

// Exit codes returned by the mug binary.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitValidation   = 2
	ExitDuplicate    = 3
	ExitUnknownOwner = 4
	ExitNotFound     = 5
	ExitExists       = 6
	ExitBound        = 7
	ExitCorrupt      = 8
	ExitWrite        = 9
	ExitInconsistent = 10
	ExitExternalTool = 11
)

var exitCodes = map[error]int{
	project.ErrValidation:      ExitValidation,
	project.ErrDuplicateName:   ExitDuplicate,
	project.ErrUnknownGroup:    ExitUnknownOwner,
	project.ErrUnknownTarget:   ExitUnknownOwner,
	project.ErrNotFound:        ExitNotFound,
	project.ErrAlreadyExists:   ExitExists,
	project.ErrAlreadyBound:    ExitBound,
	project.ErrCorruptModel:    ExitCorrupt,
	project.ErrWrite:           ExitWrite,
	project.ErrMaterialization: ExitWrite,
	project.ErrInconsistent:    ExitInconsistent,
	project.ErrExternalTool:    ExitExternalTool,
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ui.ErrHeadlessNoConfirm) {
		return ExitValidation
	}
	if code, ok := exitCodes[project.KindOf(err)]; ok {
		return code
	}
	return ExitFailure
}
