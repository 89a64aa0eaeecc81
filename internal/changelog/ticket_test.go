package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketNumber(t *testing.T) {
	tests := map[string]struct {
		title  string
		ticket int
	}{
		"hyphenated":          {title: "DM-1234: fix thing", ticket: 1234},
		"lower case":          {title: "dm-99 tidy docs", ticket: 99},
		"space separated":     {title: "DM 4321 adjust defaults", ticket: 4321},
		"no separator":        {title: "DM1234", ticket: 1234},
		"embedded":            {title: "Backport of DM-777 to release", ticket: 777},
		"first match wins":    {title: "DM-1 and DM-2", ticket: 1},
		"no ticket":           {title: "no ticket here", ticket: 0},
		"empty title":         {title: "", ticket: 0},
		"dm without a number": {title: "DM- pending", ticket: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.ticket, TicketNumber(tc.title))
		})
	}
}

func TestIssueKey(t *testing.T) {
	assert.Equal(t, "DM-1234", IssueKey(1234))
}
