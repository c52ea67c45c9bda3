/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package bundle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDigestAlgorithm  = errors.New("unknown digest algorithm")
	ErrRequiredFileSetMismatch = errors.New("required file set mismatch")
)

// FileSetError reports exactly how the archive contents deviate from the
// required set. It always indicates a pipeline defect, never caller input.
type FileSetError struct {
	Missing []string
	Extra   []string
}

func (e *FileSetError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRequiredFileSetMismatch.Error())
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing [%s]", strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		fmt.Fprintf(&b, ": extra [%s]", strings.Join(e.Extra, ", "))
	}
	return b.String()
}

func (e *FileSetError) Unwrap() error {
	return ErrRequiredFileSetMismatch
}
