package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

type FeeRecommendation struct {
	ExhibitionID         uint            `json:"exhibition_id"`
	VenueCost            decimal.Decimal `json:"venue_cost" swaggertype:"string"`
	ProviderCosts        decimal.Decimal `json:"provider_costs" swaggertype:"string"`
	TotalExpenses        decimal.Decimal `json:"total_expenses" swaggertype:"string"`
	ExpectedUniversities int             `json:"expected_universities"`
	BreakEven            decimal.Decimal `json:"break_even" swaggertype:"string"`
	Margin               decimal.Decimal `json:"margin" swaggertype:"string"`
	Fee                  decimal.Decimal `json:"fee" swaggertype:"string"`
}

// scheduleSnapshot is written to the exhibition when it is settled.
type scheduleSnapshot struct {
	FloorPlan      json.RawMessage        `json:"floor_plan,omitempty"`
	Booths         []domain.Booth         `json:"booths"`
	Participations []domain.Participation `json:"participations"`
	SettledAt      time.Time              `json:"settled_at"`
}

type SettlementService struct {
	exRepo    ExhibitionRepository
	partRepo  ParticipationRepository
	venueRepo VenueRequestRepository
	dirRepo   DirectoryRepository
	owners    OwnerRepository
	settings  Settings
	now       func() time.Time
}

func NewSettlementService(exRepo ExhibitionRepository, partRepo ParticipationRepository, venueRepo VenueRequestRepository, dirRepo DirectoryRepository, owners OwnerRepository, settings Settings) *SettlementService {
	return &SettlementService{
		exRepo:    exRepo,
		partRepo:  partRepo,
		venueRepo: venueRepo,
		dirRepo:   dirRepo,
		owners:    owners,
		settings:  settings,
		now:       time.Now,
	}
}

// Settle closes planning. Every live participation must be confirmed (and paid, for paying kinds);
// the financial record, schedule snapshot and finalization deadline are then written together and
// the exhibition becomes CONFIRMED. Participations are read under the exhibition lock so nothing
// invited or reserved concurrently escapes the check.
func (s *SettlementService) Settle(ctx context.Context, actor domain.Actor, exhibitionID uint, finalizationDeadline *time.Time) (domain.Exhibition, error) {
	if err := s.authorize(ctx, actor, exhibitionID); err != nil {
		return domain.Exhibition{}, err
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = ex.Require(domain.ExhibitionPlanning); err != nil {
		return domain.Exhibition{}, err
	}

	now := s.now()
	deadline, err := deadlineOr(finalizationDeadline, now, s.settings.FinalizationWindow)
	if err != nil {
		return domain.Exhibition{}, err
	}

	var fin domain.ExhibitionFinancial
	updated, err := s.exRepo.Transition(ctx, exhibitionID, func(state domain.ExhibitionState) (domain.ExhibitionChange, error) {
		ex := state.Exhibition
		if err := ex.Require(domain.ExhibitionPlanning); err != nil {
			return domain.ExhibitionChange{}, err
		}

		var blocking []uint
		var ready []domain.Participation
		for _, p := range state.Participations {
			if !p.IsLive() {
				continue
			}
			if !p.ReadyForSettlement() {
				blocking = append(blocking, p.ID)
				continue
			}
			ready = append(ready, p)
		}
		if len(blocking) > 0 {
			return domain.ExhibitionChange{}, &domain.SettlementError{Blocking: blocking}
		}

		snapshot, err := json.Marshal(scheduleSnapshot{
			FloorPlan:      ex.ScheduleJSON,
			Booths:         state.Booths,
			Participations: ready,
			SettledAt:      now,
		})
		if err != nil {
			return domain.ExhibitionChange{}, fmt.Errorf("json.Marshal -> %w", err)
		}

		fin = domain.NewFinancial(exhibitionID, ready, now)

		ex.Status = domain.ExhibitionConfirmed
		ex.ScheduleJSON = snapshot
		ex.FinalizationDeadline = deadline
		return domain.ExhibitionChange{Exhibition: ex, Financial: &fin}, nil
	})
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.exRepo.Transition -> %w", err)
	}

	zap.L().Info("exhibition settled",
		zap.Uint("exhibition_id", exhibitionID),
		zap.String("revenue", fin.TotalRevenue.StringFixed(2)),
		zap.String("expenses", fin.TotalExpenses.StringFixed(2)),
		zap.String("net_profit", fin.NetProfit.StringFixed(2)),
	)

	return updated, nil
}

func (s *SettlementService) GetFinancial(ctx context.Context, actor domain.Actor, exhibitionID uint) (domain.ExhibitionFinancial, error) {
	if err := s.authorize(ctx, actor, exhibitionID); err != nil {
		return domain.ExhibitionFinancial{}, err
	}

	fin, err := s.exRepo.FindFinancial(ctx, exhibitionID)
	if err != nil {
		return domain.ExhibitionFinancial{}, fmt.Errorf("s.exRepo.FindFinancial -> %w", err)
	}

	return fin, nil
}

// RecommendedFee is the university fee that breaks even on the venue rental and committed vendor
// costs, spread over the expected universities and raised by margin. The break-even share is rounded
// to cents before the margin is applied. When expected is zero the universities currently taking
// part are counted instead.
func (s *SettlementService) RecommendedFee(ctx context.Context, actor domain.Actor, exhibitionID uint, expected int, margin decimal.Decimal) (FeeRecommendation, error) {
	if err := s.authorize(ctx, actor, exhibitionID); err != nil {
		return FeeRecommendation{}, err
	}
	if margin.IsNegative() {
		return FeeRecommendation{}, domain.Invalid("margin cannot be negative")
	}
	if expected < 0 {
		return FeeRecommendation{}, domain.Invalid("expected university count cannot be negative")
	}

	ex, err := s.exRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return FeeRecommendation{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}

	venueCost, err := s.venueRental(ctx, ex)
	if err != nil {
		return FeeRecommendation{}, err
	}

	participations, err := s.partRepo.ListByExhibition(ctx, exhibitionID, "")
	if err != nil {
		return FeeRecommendation{}, fmt.Errorf("s.partRepo.ListByExhibition -> %w", err)
	}

	providers := decimal.Zero
	universities := 0
	for _, p := range participations {
		switch {
		case p.Kind == domain.KindProvider && vendorCommitted(p.Status):
			providers = providers.Add(p.ProposedCost)
		case p.Kind == domain.KindUniversity && p.IsLive():
			universities++
		}
	}

	if expected == 0 {
		expected = universities
	}
	if expected == 0 {
		return FeeRecommendation{}, domain.Invalid("expected university count must be positive")
	}

	total := venueCost.Add(providers)
	breakEven := total.Div(decimal.NewFromInt(int64(expected))).Round(2)
	fee := breakEven.Mul(decimal.NewFromInt(1).Add(margin)).Round(2)

	return FeeRecommendation{
		ExhibitionID:         exhibitionID,
		VenueCost:            venueCost,
		ProviderCosts:        providers,
		TotalExpenses:        total,
		ExpectedUniversities: expected,
		BreakEven:            breakEven,
		Margin:               margin,
		Fee:                  fee,
	}, nil
}

// venueRental is the approved venue's daily fee times the exhibition's days, both ends included.
// Without an approved venue it is zero.
func (s *SettlementService) venueRental(ctx context.Context, ex domain.Exhibition) (decimal.Decimal, error) {
	requests, err := s.venueRepo.ListByExhibition(ctx, ex.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("s.venueRepo.ListByExhibition -> %w", err)
	}

	for _, vr := range requests {
		if vr.Status != domain.VenueRequestApproved {
			continue
		}

		venue, err := s.dirRepo.FindVenue(ctx, vr.VenueID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("s.dirRepo.FindVenue -> %w", err)
		}

		return venue.RentalFeePerDay.Mul(decimal.NewFromInt(int64(ex.Days()))), nil
	}

	return decimal.Zero, nil
}

func (s *SettlementService) authorize(ctx context.Context, actor domain.Actor, exhibitionID uint) error {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}

	return authz.Check(actor, chain, authz.ManageExhibition)
}

func vendorCommitted(s domain.ParticipationStatus) bool {
	switch s {
	case domain.ParticipationApproved, domain.ParticipationConfirmed, domain.ParticipationFinalized, domain.ParticipationAttended:
		return true
	default:
		return false
	}
}
