/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package pipeline

import (
	"strconv"
	"time"

	"github.com/passfoundry/passforge/internal/domain/model"
	"github.com/passfoundry/passforge/internal/pass"
)

// defaultTemplate is the stock storeCard layout used when a campaign carries
// no template of its own. Placeholders are resolved per pass.
func defaultTemplate(c *model.Campaign) pass.Template {
	return pass.Template{
		OrganizationName: c.Name,
		Description:      c.Name + " loyalty card",
		LogoText:         c.Name,
		Header: []pass.Field{
			{Key: "stamps", Label: "STAMPS", Value: "{stampsEarned} of {stampsRequired}"},
		},
		Primary: []pass.Field{
			{Key: "reward", Label: "NEXT REWARD", Value: "{nextReward}"},
		},
		Secondary: []pass.Field{
			{Key: "customer", Label: "MEMBER", Value: "{customerName}"},
			{Key: "joined", Label: "MEMBER SINCE", Value: "{issueDate}"},
		},
		Back: []pass.Field{
			{Key: "terms", Label: "How it works",
				Value: "Collect {stampsRequired} stamps to earn: {nextReward}"},
		},
	}
}

// buildContext derives the substitution variables for one pass.
func buildContext(c *model.Campaign, customerName string, earned int, issued time.Time) pass.Context {
	remaining := c.StampsRequired - earned
	if remaining < 0 {
		remaining = 0
	}
	return pass.Context{
		"customerName":    customerName,
		"stampsEarned":    strconv.Itoa(earned),
		"stampsRequired":  strconv.Itoa(c.StampsRequired),
		"stampsRemaining": strconv.Itoa(remaining),
		"nextReward":      c.RewardText,
		"issueDate":       issued.UTC().Format("Jan 2, 2006"),
	}
}
