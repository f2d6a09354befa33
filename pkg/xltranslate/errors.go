package xltranslate

import (
	"fmt"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/workbook"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = workbook.ErrFileNotFound

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = workbook.ErrInvalidFormat

// ErrCancelled indicates the run was cancelled by the caller.
var ErrCancelled = translate.ErrCancelled

// ApplyError represents a translated text that could not be written back.
type ApplyError struct {
	Sheet   string
	Address address.Address
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply error in sheet %q at %s: %v", e.Sheet, e.Address, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewApplyError creates a new ApplyError.
func NewApplyError(sheet string, addr address.Address, err error) *ApplyError {
	return &ApplyError{
		Sheet:   sheet,
		Address: addr,
		Err:     err,
	}
}
