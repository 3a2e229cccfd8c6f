// Package importer turns bank statement exports into incoming transactions
// ready for ingestion.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
)

type Importer interface {
	Parse(r io.Reader) (*bank.Statement, error)
}
