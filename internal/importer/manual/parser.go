// Package manual reads the plain CSV layout used for hand-maintained
// accounts: a header row naming date, description and amount columns, ISO
// dates and dot-decimal amounts. Negative amounts are outgoing.
package manual

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	enc "github.com/MrJamesThe3rd/apexrecon/internal/encoding"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

const (
	colDate        = "date"
	colDescription = "description"
	colAmount      = "amount"
	colReference   = "reference"
)

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
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row")
	}

	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{colDate, colDescription, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	refIdx, hasRef := cols[colReference]
	stmt := &bank.Statement{Charset: decoded.Charset}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if blank(row) {
			continue
		}

		date, err := time.Parse(time.DateOnly, cell(row, cols[colDate]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}

		amount, err := money.Parse(cell(row, cols[colAmount]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch {
		case amount.IsZero():
			continue
		case amount.IsNegative():
			stmt.SkippedOutgoing++
			continue
		}

		desc := cell(row, cols[colDescription])

		raw := desc
		if hasRef {
			if ref := cell(row, refIdx); ref != "" {
				raw = desc + " " + ref
			}
		}

		stmt.Incoming = append(stmt.Incoming, bank.TransactionParams{
			Amount:          amount,
			TransactionDate: date,
			Description:     desc,
			RawDescription:  raw,
		})
	}

	return stmt, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
