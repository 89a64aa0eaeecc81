package changelog

import (
	"regexp"
	"strconv"
	"strings"
)

// ticketRe matches a DM ticket reference in an upper-cased title: "DM",
// optional whitespace or hyphens, then the ticket number.
var ticketRe = regexp.MustCompile(`DM[\s-]*(\d+)`)

// TicketNumber extracts the numeric part of the first DM ticket reference
// in a change title. It returns 0 when the title carries none; such changes
// are still recorded but dropped later at cross-reference time.
func TicketNumber(title string) int {
	m := ticketRe.FindStringSubmatch(strings.ToUpper(title))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// IssueKey formats a ticket number as its issue-tracker key.
func IssueKey(n int) string {
	return "DM-" + strconv.Itoa(n)
}
