package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
)

type ParticipationDAO interface {
	Insert(ctx context.Context, p dao.Participation, exhibitionStatuses []string, advanceTo string) (dao.Participation, error)
	FindByID(ctx context.Context, id uint) (dao.Participation, error)
	ListByExhibition(ctx context.Context, exhibitionID uint, kind string) ([]dao.Participation, error)
	ListDeadlineCandidates(ctx context.Context, now time.Time) ([]dao.Participation, error)
	Apply(ctx context.Context, ch dao.ParticipationChange) (dao.Participation, error)
}

type BoothDAO interface {
	ListByExhibition(ctx context.Context, exhibitionID uint) ([]dao.Booth, error)
	Reassign(ctx context.Context, exhibitionID uint, booths []dao.Booth, schedule datatypes.JSON, statuses []string) error
	SumMaxParticipants(ctx context.Context, exhibitionID uint) (int, error)
}

type ParticipationRepository struct {
	dao ParticipationDAO
}

func NewParticipationRepository(dao ParticipationDAO) *ParticipationRepository {
	return &ParticipationRepository{
		dao: dao,
	}
}

// Invite stores a new invitation while the exhibition is in one of statuses, moving it to
// advanceTo in the same transaction.
func (r *ParticipationRepository) Invite(ctx context.Context, p domain.Participation, statuses []domain.ExhibitionStatus, advanceTo domain.ExhibitionStatus) (domain.Participation, error) {
	created, err := r.dao.Insert(ctx, participationToDao(p), statusStrings(statuses), string(advanceTo))
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Insert -> %w", mapErr(err))
	}

	return participationToDomain(created), nil
}

func (r *ParticipationRepository) FindByID(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.FindByID -> %w", mapErr(err))
	}

	return participationToDomain(found), nil
}

func (r *ParticipationRepository) ListByExhibition(ctx context.Context, exhibitionID uint, kind domain.Kind) ([]domain.Participation, error) {
	found, err := r.dao.ListByExhibition(ctx, exhibitionID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByExhibition -> %w", mapErr(err))
	}

	return participationsToDomain(found), nil
}

func (r *ParticipationRepository) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]domain.Participation, error) {
	found, err := r.dao.ListDeadlineCandidates(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListDeadlineCandidates -> %w", mapErr(err))
	}

	return participationsToDomain(found), nil
}

func (r *ParticipationRepository) Apply(ctx context.Context, ch domain.ParticipationChange) (domain.Participation, error) {
	updated, err := r.dao.Apply(ctx, participationChangeToDao(ch))
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Apply -> %w", mapErr(err))
	}

	return participationToDomain(updated), nil
}

type BoothRepository struct {
	dao BoothDAO
}

func NewBoothRepository(dao BoothDAO) *BoothRepository {
	return &BoothRepository{
		dao: dao,
	}
}

func (r *BoothRepository) ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.Booth, error) {
	found, err := r.dao.ListByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByExhibition -> %w", mapErr(err))
	}

	booths := make([]domain.Booth, len(found))
	for i, b := range found {
		booths[i] = boothToDomain(b)
	}

	return booths, nil
}

// Reassign moves booths while the exhibition is still in one of statuses. A nil schedule
// leaves the stored one alone.
func (r *BoothRepository) Reassign(ctx context.Context, exhibitionID uint, allocations []domain.BoothAllocation, schedule json.RawMessage, statuses []domain.ExhibitionStatus) error {
	booths := make([]dao.Booth, len(allocations))
	for i, a := range allocations {
		booths[i] = dao.Booth{ID: a.BoothID, Zone: a.Zone, BoothNumber: a.BoothNumber}
	}

	if err := r.dao.Reassign(ctx, exhibitionID, booths, jsonToDao(schedule), statusStrings(statuses)); err != nil {
		return fmt.Errorf("r.dao.Reassign -> %w", mapErr(err))
	}

	return nil
}

func (r *BoothRepository) SumMaxParticipants(ctx context.Context, exhibitionID uint) (int, error) {
	n, err := r.dao.SumMaxParticipants(ctx, exhibitionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumMaxParticipants -> %w", mapErr(err))
	}

	return n, nil
}

func participationChangeToDao(ch domain.ParticipationChange) dao.ParticipationChange {
	booths := make([]dao.Booth, len(ch.Booths))
	for i, b := range ch.Booths {
		booths[i] = boothToDao(b)
	}

	return dao.ParticipationChange{
		Participation:     participationToDao(ch.Participation),
		From:              string(ch.From),
		Reserve:           ch.Reserve,
		KindCap:           ch.KindCap,
		Booths:            booths,
		Release:           ch.Release,
		AddVisitors:       ch.AddVisitors,
		ReplaceActivities: ch.ReplaceActivities,
	}
}

func participationToDao(p domain.Participation) dao.Participation {
	activities := make([]dao.Activity, len(p.ActivityIDs))
	for i, id := range p.ActivityIDs {
		activities[i] = dao.Activity{ID: id}
	}

	return dao.Participation{
		ID:                   p.ID,
		ExhibitionID:         p.ExhibitionID,
		InstitutionID:        p.InstitutionID,
		Kind:                 string(p.Kind),
		Status:               string(p.Status),
		Fee:                  p.Fee,
		PaymentStatus:        string(p.PaymentStatus),
		PaymentDate:          p.PaymentDate,
		RequestedBooths:      p.RequestedBooths,
		ReservedBooths:       p.ReservedBooths,
		ApprovedBoothsCount:  p.ApprovedBoothsCount,
		BoothDetails:         jsonToDao(p.BoothDetails),
		OrgRequirements:      p.OrgRequirements,
		Proposal:             p.Proposal,
		ProposedCost:         p.ProposedCost,
		Activities:           activities,
		OrgResponse:          p.OrgResponse,
		ExpectedVisitors:     p.ExpectedVisitors,
		ResponseDeadline:     p.ResponseDeadline,
		ConfirmationDeadline: p.ConfirmationDeadline,
		InvitedAt:            p.InvitedAt,
		SubmittedAt:          p.SubmittedAt,
		ReviewedAt:           p.ReviewedAt,
		ConfirmedAt:          p.ConfirmedAt,
		FinalizedAt:          p.FinalizedAt,
		AttendedAt:           p.AttendedAt,
		CancelledAt:          p.CancelledAt,
		CancelReason:         p.CancelReason,
	}
}

func participationToDomain(p dao.Participation) domain.Participation {
	var activityIDs []uint
	for _, a := range p.Activities {
		activityIDs = append(activityIDs, a.ID)
	}

	return domain.Participation{
		ID:                   p.ID,
		ExhibitionID:         p.ExhibitionID,
		InstitutionID:        p.InstitutionID,
		Kind:                 domain.Kind(p.Kind),
		Status:               domain.ParticipationStatus(p.Status),
		Fee:                  p.Fee,
		PaymentStatus:        domain.PaymentStatus(p.PaymentStatus),
		PaymentDate:          p.PaymentDate,
		RequestedBooths:      p.RequestedBooths,
		ReservedBooths:       p.ReservedBooths,
		ApprovedBoothsCount:  p.ApprovedBoothsCount,
		BoothDetails:         json.RawMessage(p.BoothDetails),
		OrgRequirements:      p.OrgRequirements,
		Proposal:             p.Proposal,
		ProposedCost:         p.ProposedCost,
		ActivityIDs:          activityIDs,
		OrgResponse:          p.OrgResponse,
		ExpectedVisitors:     p.ExpectedVisitors,
		ResponseDeadline:     p.ResponseDeadline,
		ConfirmationDeadline: p.ConfirmationDeadline,
		InvitedAt:            p.InvitedAt,
		SubmittedAt:          p.SubmittedAt,
		ReviewedAt:           p.ReviewedAt,
		ConfirmedAt:          p.ConfirmedAt,
		FinalizedAt:          p.FinalizedAt,
		AttendedAt:           p.AttendedAt,
		CancelledAt:          p.CancelledAt,
		CancelReason:         p.CancelReason,
	}
}

func participationsToDomain(found []dao.Participation) []domain.Participation {
	participations := make([]domain.Participation, len(found))
	for i, p := range found {
		participations[i] = participationToDomain(p)
	}

	return participations
}

func boothToDao(b domain.Booth) dao.Booth {
	return dao.Booth{
		ID:              b.ID,
		ExhibitionID:    b.ExhibitionID,
		BoothType:       string(b.BoothType),
		ParticipationID: b.ParticipationID,
		ActivityID:      b.ActivityID,
		Zone:            b.Zone,
		BoothNumber:     b.BoothNumber,
		DurationMinutes: b.DurationMinutes,
		MaxParticipants: b.MaxParticipants,
		CreatedAt:       b.CreatedAt,
	}
}

func boothToDomain(b dao.Booth) domain.Booth {
	return domain.Booth{
		ID:              b.ID,
		ExhibitionID:    b.ExhibitionID,
		BoothType:       domain.BoothType(b.BoothType),
		ParticipationID: b.ParticipationID,
		ActivityID:      b.ActivityID,
		Zone:            b.Zone,
		BoothNumber:     b.BoothNumber,
		DurationMinutes: b.DurationMinutes,
		MaxParticipants: b.MaxParticipants,
		CreatedAt:       b.CreatedAt,
	}
}

func statusStrings(statuses []domain.ExhibitionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}
