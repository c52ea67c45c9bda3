/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pass

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFieldLimitExceeded = errors.New("field limit exceeded")
	ErrInvalidColor       = errors.New("invalid color format")
	ErrInvalidBarcode     = errors.New("invalid barcode payload")
)

// Violation is one validation finding. Validation never stops at the first
// problem so a caller can fix everything in one round-trip.
type Violation struct {
	Slot    string // field slot name, empty for non-slot violations
	Limit   int
	Got     int
	Message string
}

func (v Violation) Error() string {
	if v.Slot != "" {
		return fmt.Sprintf("slot %q: %d fields exceeds limit %d", v.Slot, v.Got, v.Limit)
	}
	return v.Message
}

func (v Violation) Is(target error) bool {
	return v.Slot != "" && target == ErrFieldLimitExceeded
}

// ValidationError aggregates every violation found in a descriptor.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "descriptor validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}
