package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	enc "github.com/MrJamesThe3rd/apexrecon/internal/encoding"
)

const dateLayout = "02-01-2006"

// Parser reads CGD statement exports (conta, extrato, cartão). Only incoming
// movements become transactions; outgoing ones are counted and skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*bank.Statement, error) {
	decoded, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	l, h, headerIdx := detectLayout(rows)
	if l == nil {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	stmt := &bank.Statement{Charset: decoded.Charset}

	for i, row := range rows[headerIdx+1:] {
		line := headerIdx + i + 2

		date, ok := dateAt(row, h[l.date])
		if !ok {
			continue
		}

		desc := cellValue(row, h[l.desc])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", line)
		}

		amount, incoming, ok := l.movement(h, row)
		if !ok {
			continue
		}

		if !incoming {
			stmt.SkippedOutgoing++
			continue
		}

		stmt.Incoming = append(stmt.Incoming, bank.TransactionParams{
			Amount:          amount,
			TransactionDate: date,
			Description:     desc,
			RawDescription:  desc,
		})
	}

	return stmt, nil
}

// dateAt is false for blank or unparseable cells, which is how footer and
// page-break rows are skipped.
func dateAt(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
