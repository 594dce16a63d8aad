package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type ExhibitionDAO interface {
	Insert(ctx context.Context, ex dao.Exhibition) (dao.Exhibition, error)
	FindByID(ctx context.Context, id uint) (dao.Exhibition, error)
	List(ctx context.Context, organizationID uint) ([]dao.Exhibition, error)
	Transition(ctx context.Context, id uint, plan dao.TransitionPlan) (dao.Exhibition, error)
	FindFinancial(ctx context.Context, exhibitionID uint) (dao.ExhibitionFinancial, error)
	ListFinancials(ctx context.Context, exhibitionIDs []uint) ([]dao.ExhibitionFinancial, error)
	CountByStatus(ctx context.Context, organizationID uint) (map[string]int64, error)
	ListIDs(ctx context.Context, organizationID uint) ([]uint, error)
}

type ExhibitionRepository struct {
	dao ExhibitionDAO
}

func NewExhibitionRepository(dao ExhibitionDAO) *ExhibitionRepository {
	return &ExhibitionRepository{
		dao: dao,
	}
}

func (r *ExhibitionRepository) Create(ctx context.Context, ex domain.Exhibition) (domain.Exhibition, error) {
	created, err := r.dao.Insert(ctx, exhibitionToDao(ex))
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("r.dao.Insert -> %w", mapErr(err))
	}

	return exhibitionToDomain(created), nil
}

func (r *ExhibitionRepository) FindByID(ctx context.Context, id uint) (domain.Exhibition, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("r.dao.FindByID -> %w", mapErr(err))
	}

	return exhibitionToDomain(found), nil
}

func (r *ExhibitionRepository) List(ctx context.Context, organizationID uint) ([]domain.Exhibition, error) {
	found, err := r.dao.List(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", mapErr(err))
	}

	exhibitions := make([]domain.Exhibition, len(found))
	for i, ex := range found {
		exhibitions[i] = exhibitionToDomain(ex)
	}

	return exhibitions, nil
}

// Transition runs plan against the locked exhibition and persists what it decides with
// everything it drags along.
func (r *ExhibitionRepository) Transition(ctx context.Context, id uint, plan domain.ExhibitionPlan) (domain.Exhibition, error) {
	updated, err := r.dao.Transition(ctx, id, func(ex dao.Exhibition, participations []dao.Participation, booths []dao.Booth) (dao.ExhibitionTransition, error) {
		state := domain.ExhibitionState{
			Exhibition:     exhibitionToDomain(ex),
			Participations: participationsToDomain(participations),
			Booths:         make([]domain.Booth, len(booths)),
		}
		for i, b := range booths {
			state.Booths[i] = boothToDomain(b)
		}

		change, err := plan(state)
		if err != nil {
			return dao.ExhibitionTransition{}, err
		}

		t := dao.ExhibitionTransition{
			Exhibition: exhibitionToDao(change.Exhibition),
			Changes:    make([]dao.ParticipationChange, len(change.Participations)),
		}
		for i, ch := range change.Participations {
			t.Changes[i] = participationChangeToDao(ch)
		}
		if f := change.Financial; f != nil {
			t.Financial = &dao.ExhibitionFinancial{
				ExhibitionID:  f.ExhibitionID,
				TotalRevenue:  f.TotalRevenue,
				TotalExpenses: f.TotalExpenses,
				NetProfit:     f.NetProfit,
				CalculatedAt:  f.CalculatedAt,
			}
		}

		return t, nil
	})
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("r.dao.Transition -> %w", mapErr(err))
	}

	return exhibitionToDomain(updated), nil
}

func (r *ExhibitionRepository) FindFinancial(ctx context.Context, exhibitionID uint) (domain.ExhibitionFinancial, error) {
	found, err := r.dao.FindFinancial(ctx, exhibitionID)
	if err != nil {
		return domain.ExhibitionFinancial{}, fmt.Errorf("r.dao.FindFinancial -> %w", mapErr(err))
	}

	return financialToDomain(found), nil
}

func (r *ExhibitionRepository) ListFinancials(ctx context.Context, organizationID uint) ([]domain.ExhibitionFinancial, error) {
	ids, err := r.dao.ListIDs(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListIDs -> %w", mapErr(err))
	}

	found, err := r.dao.ListFinancials(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListFinancials -> %w", mapErr(err))
	}

	financials := make([]domain.ExhibitionFinancial, len(found))
	for i, f := range found {
		financials[i] = financialToDomain(f)
	}

	return financials, nil
}

func (r *ExhibitionRepository) CountByStatus(ctx context.Context, organizationID uint) (map[string]int64, error) {
	counts, err := r.dao.CountByStatus(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByStatus -> %w", mapErr(err))
	}

	return counts, nil
}

func exhibitionToDao(e domain.Exhibition) dao.Exhibition {
	return dao.Exhibition{
		ID:                     e.ID,
		OrganizationID:         e.OrganizationID,
		Title:                  e.Title,
		Description:            e.Description,
		Theme:                  e.Theme,
		Status:                 string(e.Status),
		StartDate:              e.StartDate,
		EndDate:                e.EndDate,
		StartTime:              e.StartTime,
		EndTime:                e.EndTime,
		TotalAvailableBooths:   e.TotalAvailableBooths,
		StandardBoothSqm:       e.StandardBoothSqm,
		MaxBoothsPerUniversity: e.MaxBoothsPerUniversity,
		MaxBoothsPerProvider:   e.MaxBoothsPerProvider,
		BoothsReserved:         e.BoothsReserved,
		ExpectedVisitors:       e.ExpectedVisitors,
		ActualVisitors:         e.ActualVisitors,
		VisitorCapacity:        e.VisitorCapacity,
		ScheduleJSON:           jsonToDao(e.ScheduleJSON),
		FinalizationDeadline:   e.FinalizationDeadline,
		CancelReason:           e.CancelReason,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}

func exhibitionToDomain(e dao.Exhibition) domain.Exhibition {
	return domain.Exhibition{
		ID:                     e.ID,
		OrganizationID:         e.OrganizationID,
		Title:                  e.Title,
		Description:            e.Description,
		Theme:                  e.Theme,
		Status:                 domain.ExhibitionStatus(e.Status),
		StartDate:              e.StartDate,
		EndDate:                e.EndDate,
		StartTime:              e.StartTime,
		EndTime:                e.EndTime,
		TotalAvailableBooths:   e.TotalAvailableBooths,
		StandardBoothSqm:       e.StandardBoothSqm,
		MaxBoothsPerUniversity: e.MaxBoothsPerUniversity,
		MaxBoothsPerProvider:   e.MaxBoothsPerProvider,
		BoothsReserved:         e.BoothsReserved,
		ExpectedVisitors:       e.ExpectedVisitors,
		ActualVisitors:         e.ActualVisitors,
		VisitorCapacity:        e.VisitorCapacity,
		ScheduleJSON:           json.RawMessage(e.ScheduleJSON),
		FinalizationDeadline:   e.FinalizationDeadline,
		CancelReason:           e.CancelReason,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}

func financialToDomain(f dao.ExhibitionFinancial) domain.ExhibitionFinancial {
	return domain.ExhibitionFinancial{
		ID:            f.ID,
		ExhibitionID:  f.ExhibitionID,
		TotalRevenue:  f.TotalRevenue,
		TotalExpenses: f.TotalExpenses,
		NetProfit:     f.NetProfit,
		CalculatedAt:  f.CalculatedAt,
	}
}

// jsonToDao keeps an absent document NULL instead of storing an empty jsonb value.
func jsonToDao(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}

	return datatypes.JSON(raw)
}
