package statement

import (
	"regexp"
	"strings"
)

var (
	// datePattern matches the start of a new transaction: a leading
	// "DD Mon YYYY" date, e.g. "01 Nov 2025". No other line format
	// opens a transaction.
	datePattern = regexp.MustCompile(`^(\d{2}\s[A-Za-z]{3}\s\d{4})`)

	// moneyPattern matches currency tokens like "-£14.50" or "+£1,200.00".
	moneyPattern = regexp.MustCompile(`([+-]?£[\d,]+\.\d{2})`)
)

// matchDate returns the leading date token of a line, or "" if the line
// does not start a transaction.
func matchDate(line string) string {
	return datePattern.FindString(line)
}

// findMoney returns every currency token on the line in left-to-right order.
func findMoney(line string) []string {
	return moneyPattern.FindAllString(line, -1)
}

// pending accumulates one transaction while its lines are being read.
// Amount and Balance hold the raw token text; the empty string means unset.
type pending struct {
	Date        string
	Description string
	Amount      string
	Balance     string
}

// assignMoney applies the tie-break policy for currency tokens found on a
// line and strips the consumed tokens from the accumulated description.
//
// Two or more tokens: statements print the transaction amount immediately
// followed by the running balance, so the second-to-last token is the
// amount and the last is the balance. A single token fills the amount if
// it is still unset, otherwise the balance. Fields already set are never
// overwritten; a transaction's amount is assigned once.
func (p *pending) assignMoney(matches []string) {
	if len(matches) == 0 {
		return
	}

	if len(matches) >= 2 {
		amount := matches[len(matches)-2]
		balance := matches[len(matches)-1]
		if p.Amount == "" {
			p.Amount = amount
		}
		if p.Balance == "" {
			p.Balance = balance
		}
		p.stripFromDescription(amount, balance)
		return
	}

	token := matches[0]
	if p.Amount == "" {
		p.Amount = token
	} else if p.Balance == "" {
		p.Balance = token
	}
	p.stripFromDescription(token)
}

func (p *pending) stripFromDescription(tokens ...string) {
	desc := p.Description
	for _, tok := range tokens {
		desc = strings.ReplaceAll(desc, tok, "")
	}
	p.Description = strings.TrimSpace(desc)
}

// appendDescription adds a continuation line's text, separated by a
// single space.
func (p *pending) appendDescription(line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}
	if p.Description == "" {
		p.Description = text
		return
	}
	p.Description += " " + text
}
