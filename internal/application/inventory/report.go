package inventory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// BuildValuationReport reúne valoración y resumen de déficits del tenant en un mismo instante.
func (s *LedgerService) BuildValuationReport(ctx context.Context, tenantID string) (*dto.ValuationReport, error) {
	report := &dto.ValuationReport{TenantID: tenantID, GeneratedAt: s.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.InventoryValuation(gctx, tenantID)
		if err != nil {
			return err
		}
		report.Valuation = *v
		return nil
	})
	g.Go(func() error {
		d, err := s.DeficitSummary(gctx, tenantID)
		if err != nil {
			return err
		}
		report.Deficits = *d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
