package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type DashboardService struct {
	exRepo  ExhibitionRepository
	dirRepo DirectoryRepository
}

func NewDashboardService(exRepo ExhibitionRepository, dirRepo DirectoryRepository) *DashboardService {
	return &DashboardService{
		exRepo:  exRepo,
		dirRepo: dirRepo,
	}
}

// Overview summarizes one organization's exhibitions, or every exhibition when organizationID is 0.
func (s *DashboardService) Overview(ctx context.Context, actor domain.Actor, organizationID uint) (domain.Overview, error) {
	chain := authz.OwnerChain{}
	if organizationID != 0 {
		org, err := s.dirRepo.FindOrganization(ctx, organizationID)
		if err != nil {
			return domain.Overview{}, fmt.Errorf("s.dirRepo.FindOrganization -> %w", err)
		}
		chain.OrganizationOwnerID = org.OwnerID
	}
	if err := authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return domain.Overview{}, err
	}

	counts, err := s.exRepo.CountByStatus(ctx, organizationID)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("s.exRepo.CountByStatus -> %w", err)
	}

	financials, err := s.exRepo.ListFinancials(ctx, organizationID)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("s.exRepo.ListFinancials -> %w", err)
	}

	overview := domain.Overview{
		StatusBreakdown: make(map[string]int64, len(domain.ExhibitionStatuses)),
		TotalRevenue:    decimal.Zero,
		TotalExpenses:   decimal.Zero,
		NetProfit:       decimal.Zero,
	}
	for _, status := range domain.ExhibitionStatuses {
		n := counts[string(status)]
		overview.StatusBreakdown[string(status)] = n
		overview.TotalExhibitions += n

		switch {
		case status == domain.ExhibitionActive:
			overview.ActiveExhibitions += n
		case status == domain.ExhibitionCompleted:
			overview.CompletedExhibitions += n
		case status.IsCancelled():
			overview.CancelledExhibitions += n
		}
	}

	for _, f := range financials {
		overview.TotalRevenue = overview.TotalRevenue.Add(f.TotalRevenue)
		overview.TotalExpenses = overview.TotalExpenses.Add(f.TotalExpenses)
		overview.NetProfit = overview.NetProfit.Add(f.NetProfit)
	}

	return overview, nil
}
