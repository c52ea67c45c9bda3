/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pass

import (
	"regexp"
	"sort"
)

// Template is the declarative side of a pass: colors and field slots whose
// labels and values may contain {placeholder} tokens.
type Template struct {
	OrganizationName string  `json:"organizationName"`
	Description      string  `json:"description"`
	LogoText         string  `json:"logoText,omitempty"`
	Foreground       RGB     `json:"-"`
	Background       RGB     `json:"-"`
	Label            RGB     `json:"-"`
	Header           []Field `json:"header,omitempty"`
	Primary          []Field `json:"primary,omitempty"`
	Secondary        []Field `json:"secondary,omitempty"`
	Auxiliary        []Field `json:"auxiliary,omitempty"`
	Back             []Field `json:"back,omitempty"`
}

// Context is the flat key/value substitution context derived from pass data
// (customer name, stamp counts, computed reward text, formatted dates).
type Context map[string]string

// Info carries the per-pass identity the template knows nothing about.
type Info struct {
	PassTypeIdentifier  string
	TeamIdentifier      string
	SerialNumber        string
	WebServiceURL       string
	AuthenticationToken string
	Barcode             *Barcode
}

// ResolveResult is a finalized descriptor plus resolution warnings.
type ResolveResult struct {
	Descriptor *Descriptor
	// Unresolved lists placeholder keys that had no context entry. The
	// tokens stay in the output as literal text so broken templates are
	// visible instead of silently blank.
	Unresolved []string
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// Resolve merges a template with runtime variables into a validated
// descriptor. Slot-cardinality and color violations fail with a
// ValidationError enumerating every problem; unresolved placeholders are
// warnings only.
func Resolve(tpl Template, info Info, vars Context) (*ResolveResult, error) {
	missing := map[string]struct{}{}
	sub := func(s string) string {
		return placeholderRe.ReplaceAllStringFunc(s, func(tok string) string {
			key := tok[1 : len(tok)-1]
			if v, ok := vars[key]; ok {
				return v
			}
			missing[key] = struct{}{}
			return tok
		})
	}
	subFields := func(fs []Field) []Field {
		if fs == nil {
			return []Field{}
		}
		out := make([]Field, len(fs))
		for i, f := range fs {
			f.Label = sub(f.Label)
			f.Value = sub(f.Value)
			out[i] = f
		}
		return out
	}

	d := &Descriptor{
		FormatVersion:       FormatVersion,
		PassTypeIdentifier:  info.PassTypeIdentifier,
		SerialNumber:        info.SerialNumber,
		TeamIdentifier:      info.TeamIdentifier,
		OrganizationName:    tpl.OrganizationName,
		Description:         sub(tpl.Description),
		LogoText:            sub(tpl.LogoText),
		ForegroundColor:     tpl.Foreground.String(),
		BackgroundColor:     tpl.Background.String(),
		LabelColor:          tpl.Label.String(),
		WebServiceURL:       info.WebServiceURL,
		AuthenticationToken: info.AuthenticationToken,
		StoreCard: StoreCard{
			HeaderFields:    subFields(tpl.Header),
			PrimaryFields:   subFields(tpl.Primary),
			SecondaryFields: subFields(tpl.Secondary),
			AuxiliaryFields: subFields(tpl.Auxiliary),
			BackFields:      subFields(tpl.Back),
		},
		Barcode: info.Barcode,
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	unresolved := make([]string, 0, len(missing))
	for k := range missing {
		unresolved = append(unresolved, k)
	}
	sort.Strings(unresolved)
	return &ResolveResult{Descriptor: d, Unresolved: unresolved}, nil
}
