/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pass

import (
	"encoding/json"
	"sort"
)

const FormatVersion = 1

// Per-slot field maxima. The back slot is unbounded.
const (
	MaxHeaderFields    = 2
	MaxPrimaryFields   = 2
	MaxSecondaryFields = 4
	MaxAuxiliaryFields = 4
)

// Field is one labeled value inside a descriptor slot.
type Field struct {
	Key           string `json:"key"`
	Label         string `json:"label,omitempty"`
	Value         string `json:"value"`
	TextAlignment string `json:"textAlignment,omitempty"`
}

// Barcode carries the scannable payload.
type Barcode struct {
	Message         string `json:"message"`
	Format          string `json:"format"`
	MessageEncoding string `json:"messageEncoding"`
}

const (
	BarcodeFormatQR      = "PKBarcodeFormatQR"
	BarcodeEncodingASCII = "iso-8859-1"
)

// StoreCard holds the ordered field slots of a loyalty pass.
type StoreCard struct {
	HeaderFields    []Field `json:"headerFields"`
	PrimaryFields   []Field `json:"primaryFields"`
	SecondaryFields []Field `json:"secondaryFields"`
	AuxiliaryFields []Field `json:"auxiliaryFields"`
	BackFields      []Field `json:"backFields"`
}

// Descriptor is the pass.json document of a generated pass.
type Descriptor struct {
	FormatVersion       int       `json:"formatVersion"`
	PassTypeIdentifier  string    `json:"passTypeIdentifier"`
	SerialNumber        string    `json:"serialNumber"`
	TeamIdentifier      string    `json:"teamIdentifier"`
	OrganizationName    string    `json:"organizationName"`
	Description         string    `json:"description"`
	LogoText            string    `json:"logoText,omitempty"`
	ForegroundColor     string    `json:"foregroundColor"`
	BackgroundColor     string    `json:"backgroundColor"`
	LabelColor          string    `json:"labelColor"`
	WebServiceURL       string    `json:"webServiceURL,omitempty"`
	AuthenticationToken string    `json:"authenticationToken,omitempty"`
	StoreCard           StoreCard `json:"storeCard"`
	Barcode             *Barcode  `json:"barcode,omitempty"`
}

// Validate checks the descriptor shape and returns every violation found,
// or nil when the descriptor is well-formed.
func (d *Descriptor) Validate() error {
	var vs []Violation

	slots := []struct {
		name   string
		limit  int
		fields []Field
	}{
		{"header", MaxHeaderFields, d.StoreCard.HeaderFields},
		{"primary", MaxPrimaryFields, d.StoreCard.PrimaryFields},
		{"secondary", MaxSecondaryFields, d.StoreCard.SecondaryFields},
		{"auxiliary", MaxAuxiliaryFields, d.StoreCard.AuxiliaryFields},
	}
	for _, s := range slots {
		if len(s.fields) > s.limit {
			vs = append(vs, Violation{Slot: s.name, Limit: s.limit, Got: len(s.fields)})
		}
	}

	for name, v := range map[string]string{
		"foregroundColor": d.ForegroundColor,
		"backgroundColor": d.BackgroundColor,
		"labelColor":      d.LabelColor,
	} {
		if _, err := ParseRGB(v); err != nil {
			vs = append(vs, Violation{Message: name + ": " + err.Error()})
		}
	}

	for name, v := range map[string]string{
		"passTypeIdentifier": d.PassTypeIdentifier,
		"teamIdentifier":     d.TeamIdentifier,
		"serialNumber":       d.SerialNumber,
		"organizationName":   d.OrganizationName,
	} {
		if v == "" {
			vs = append(vs, Violation{Message: name + " is required"})
		}
	}

	if len(vs) == 0 {
		return nil
	}
	// stable order keeps validation messages reproducible for callers
	sort.Slice(vs, func(i, j int) bool { return vs[i].Error() < vs[j].Error() })
	return &ValidationError{Violations: vs}
}

// Marshal serializes the descriptor exactly as it is written into the
// archive and hashed into the manifest.
func (d *Descriptor) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
