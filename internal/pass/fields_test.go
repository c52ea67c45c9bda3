/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() Template {
	return Template{
		OrganizationName: "Example Coffee",
		Description:      "Loyalty card for {customerName}",
		LogoText:         "Example Coffee",
		Foreground:       RGB{255, 255, 255},
		Background:       RGB{139, 69, 19},
		Label:            RGB{255, 255, 255},
		Header: []Field{
			{Key: "stamps", Label: "STAMPS", Value: "{stampsEarned}/{stampsRequired}"},
		},
		Primary: []Field{
			{Key: "reward", Label: "NEXT REWARD", Value: "{nextReward}"},
		},
		Back: []Field{
			{Key: "terms", Label: "Terms", Value: "Collect {stampsRequired} stamps for a free coffee."},
		},
	}
}

func testInfo() Info {
	return Info{
		PassTypeIdentifier: "pass.com.example.loyalty",
		TeamIdentifier:     "TEAM123456",
		SerialNumber:       "serial-1",
	}
}

func TestResolve_SubstitutesPlaceholders(t *testing.T) {
	res, err := Resolve(testTemplate(), testInfo(), Context{
		"customerName":   "Dana",
		"stampsEarned":   "4",
		"stampsRequired": "10",
		"nextReward":     "Free coffee",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Unresolved)

	d := res.Descriptor
	assert.Equal(t, "Loyalty card for Dana", d.Description)
	assert.Equal(t, "4/10", d.StoreCard.HeaderFields[0].Value)
	assert.Equal(t, "Free coffee", d.StoreCard.PrimaryFields[0].Value)
	assert.Equal(t, "Collect 10 stamps for a free coffee.", d.StoreCard.BackFields[0].Value)
}

func TestResolve_UnresolvedStayLiteralAndAreReported(t *testing.T) {
	res, err := Resolve(testTemplate(), testInfo(), Context{
		"stampsEarned":   "4",
		"stampsRequired": "10",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"customerName", "nextReward"}, res.Unresolved)
	assert.Equal(t, "Loyalty card for {customerName}", res.Descriptor.Description)
	assert.Equal(t, "{nextReward}", res.Descriptor.StoreCard.PrimaryFields[0].Value)
}

func TestResolve_CardinalityEnforcedBeforeHandoff(t *testing.T) {
	tpl := testTemplate()
	tpl.Header = make([]Field, 3)

	_, err := Resolve(tpl, testInfo(), Context{})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Violations)
	assert.Equal(t, "header", verr.Violations[0].Slot)
}

func TestResolve_EmptySlotsMarshalAsArrays(t *testing.T) {
	tpl := testTemplate()
	tpl.Auxiliary = nil

	res, err := Resolve(tpl, testInfo(), Context{
		"customerName": "Dana", "stampsEarned": "0", "stampsRequired": "10", "nextReward": "-",
	})
	require.NoError(t, err)
	raw, err := res.Descriptor.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"auxiliaryFields": []`)
}
