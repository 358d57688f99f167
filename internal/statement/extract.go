package statement

import "strings"

// junkMarkers identify header, footer and summary lines that are printed
// on every statement page and must not leak into transactions.
var junkMarkers = []string{
	"Account number:",
	"Page ",
	"Opening balance",
	"Closing balance",
	"Account statement",
	"Money in",
	"Money out",
}

func isJunkLine(line string) bool {
	for _, marker := range junkMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// extractPage runs the line state machine over one page of extracted text
// and returns the finalized raw transactions in page order.
//
// The machine has two states: no active transaction, and building one. A
// date-prefixed line finalizes the open transaction (if any) and opens a
// new one seeded with the date and the rest of the line. While building,
// junk lines are discarded, lines carrying currency tokens fill the
// amount/balance, and anything else extends the description. The end of
// the page finalizes whatever is still open; a transaction is never split
// across two finalized entries.
func extractPage(lines []string) []pending {
	var (
		out     []pending
		current *pending
	)

	for _, line := range lines {
		if date := matchDate(line); date != "" {
			if current != nil {
				out = append(out, *current)
			}
			current = &pending{
				Date:        date,
				Description: strings.TrimSpace(line[len(date):]),
			}
			current.assignMoney(findMoney(line))
			continue
		}

		if current == nil {
			// Preamble before the first dated line; nothing to attach to.
			continue
		}
		if isJunkLine(line) {
			continue
		}

		if matches := findMoney(line); len(matches) > 0 {
			current.assignMoney(matches)
			continue
		}
		current.appendDescription(line)
	}

	if current != nil {
		out = append(out, *current)
	}
	return out
}
