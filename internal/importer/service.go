package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer/cgd"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer/manual"
)

type Service struct {
	importers map[bank.Provider]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[bank.Provider]Importer{
			bank.ProviderCGD:    cgd.NewParser(),
			bank.ProviderManual: manual.NewParser(),
		},
	}
}

// Import parses r with the format of the given provider.
func (s *Service) Import(provider bank.Provider, r io.Reader) (*bank.Statement, error) {
	importer, ok := s.importers[provider]
	if !ok {
		return nil, &apperrors.ValidationError{Field: "provider", Message: "unknown provider " + string(provider)}
	}

	stmt, err := importer.Parse(r)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "file", Message: fmt.Sprintf("parsing %s statement: %v", provider, err)}
	}

	return stmt, nil
}
