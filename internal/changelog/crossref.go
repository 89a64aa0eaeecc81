package changelog

import (
	"sort"
	"time"
)

// TicketRow is one cross-referenced row of a release: a ticket, its
// issue-tracker summary, the latest merge among the contributing changes,
// and the contributing package names in first-seen order.
type TicketRow struct {
	Ticket    int
	Summary   string
	LastMerge time.Time
	Packages  []string
}

// CrossReference groups a bucket's changes by ticket number. Changes
// without a ticket reference, and tickets with no summary in the issue
// tracker's result set, are dropped; that omission is user-visible but not
// an error. Rows are returned in ascending ticket order.
func CrossReference(b *Bucket, summaries map[string]string) []TicketRow {
	rows := make(map[int]*TicketRow)
	for _, ch := range b.Changes {
		if ch.Ticket == 0 {
			continue
		}
		summary, ok := summaries[IssueKey(ch.Ticket)]
		if !ok {
			continue
		}
		row, ok := rows[ch.Ticket]
		if !ok {
			row = &TicketRow{Ticket: ch.Ticket, Summary: summary}
			rows[ch.Ticket] = row
		}
		if ch.MergedAt.After(row.LastMerge) {
			row.LastMerge = ch.MergedAt
		}
		if !containsString(row.Packages, ch.Package) {
			row.Packages = append(row.Packages, ch.Package)
		}
	}

	out := make([]TicketRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticket < out[j].Ticket })
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
