/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrPassNotFound     = errors.New("pass not found")
)

// Stage names the pipeline states. A request moves strictly forward;
// any failure short-circuits to StageFailed with the originating stage
// recorded on the error.
type Stage string

const (
	StageResolvingFields  Stage = "ResolvingFields"
	StageRenderingImages  Stage = "RenderingImages"
	StageBuildingManifest Stage = "BuildingManifest"
	StageSigning          Stage = "Signing"
	StagePackaging        Stage = "Packaging"
	StageDone             Stage = "Done"
	StageFailed           Stage = "Failed"
)

// StageError attaches the failing stage to the component error. Nothing is
// retried; the wrapped error keeps its kind for errors.Is checks.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pass generation failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
