package cgd

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

// layout is one of the CSV exports CGD produces. Signed layouts carry a
// single amount column where credits are positive; split layouts carry
// separate debit and credit columns.
type layout struct {
	name   string
	date   string
	desc   string
	signed string
	debit  string
	credit string
}

func (l *layout) split() bool { return l.signed == "" }

func (l *layout) columns() []string {
	if l.split() {
		return []string{l.date, l.desc, l.debit, l.credit}
	}

	return []string{l.date, l.desc, l.signed}
}

// layouts are tried in order, most specific first.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", signed: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", signed: "Montante"},
}

// header maps trimmed column names to their position.
type header map[string]int

func (h header) has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			return false
		}
	}

	return true
}

// detectLayout returns the first layout whose columns appear in some row,
// together with that row's header map and index.
func detectLayout(rows [][]string) (*layout, header, int) {
	for idx, row := range rows {
		h := make(header, len(row))

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				h[name] = i
			}
		}

		for i := range layouts {
			if h.has(layouts[i].columns()...) {
				return &layouts[i], h, idx
			}
		}
	}

	return nil, nil, 0
}

// movement reads the row's amount. incoming reports whether money entered
// the account; ok is false for rows with no usable amount.
func (l *layout) movement(h header, row []string) (amount decimal.Decimal, incoming, ok bool) {
	if !l.split() {
		d, ok := amountAt(row, h[l.signed])
		if !ok {
			return decimal.Zero, false, false
		}

		return d.Abs(), d.IsPositive(), true
	}

	if d, ok := amountAt(row, h[l.debit]); ok {
		return d.Abs(), false, true
	}

	if d, ok := amountAt(row, h[l.credit]); ok {
		return d.Abs(), true, true
	}

	return decimal.Zero, false, false
}

func amountAt(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := money.ParseEuropean(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}
