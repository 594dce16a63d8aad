package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

const deadlineCancelReason = "deadline passed"

type InviteInput struct {
	ExhibitionID     uint
	Kind             domain.Kind
	InstitutionID    uint
	Fee              decimal.Decimal
	OrgRequirements  string
	ResponseDeadline *time.Time
}

type RegisterInput struct {
	RequestedBooths  int
	BoothDetails     json.RawMessage
	ExpectedVisitors int
}

type ProposeInput struct {
	Proposal         string
	Cost             decimal.Decimal
	ActivityIDs      []uint
	ExpectedVisitors int
}

// ParticipationService runs the participation state machine shared by universities, schools and
// activity providers. Every operation resolves the owner chain, makes one authorization check,
// consults the exhibition phase, enforces deadlines lazily and persists a single atomic change.
type ParticipationService struct {
	repo     ParticipationRepository
	exRepo   ExhibitionRepository
	dirRepo  DirectoryRepository
	owners   OwnerRepository
	settings Settings
	now      func() time.Time
}

func NewParticipationService(repo ParticipationRepository, exRepo ExhibitionRepository, dirRepo DirectoryRepository, owners OwnerRepository, settings Settings) *ParticipationService {
	return &ParticipationService{
		repo:     repo,
		exRepo:   exRepo,
		dirRepo:  dirRepo,
		owners:   owners,
		settings: settings,
		now:      time.Now,
	}
}

func (s *ParticipationService) Invite(ctx context.Context, actor domain.Actor, in InviteInput) (domain.Participation, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, in.ExhibitionID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return domain.Participation{}, err
	}

	ex, err := s.exRepo.FindByID(ctx, in.ExhibitionID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}
	if err = ex.Require(domain.ExhibitionVenueApproved, domain.ExhibitionPlanning); err != nil {
		return domain.Participation{}, err
	}

	if !in.Kind.Valid() {
		return domain.Participation{}, domain.Invalid("unknown participant kind %q", in.Kind)
	}
	inst, err := s.dirRepo.FindInstitution(ctx, in.InstitutionID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.dirRepo.FindInstitution -> %w", err)
	}
	if inst.Kind != in.Kind {
		return domain.Participation{}, domain.Invalid("institution %d is a %s, not a %s", inst.ID, inst.Kind, in.Kind)
	}

	caps := in.Kind.Capabilities()
	if caps.Pays && !in.Fee.IsPositive() {
		return domain.Participation{}, domain.Invalid("a %s invitation needs a positive fee", in.Kind)
	}
	if !caps.Pays && !in.Fee.IsZero() {
		return domain.Participation{}, domain.Invalid("a %s does not pay a fee", in.Kind)
	}

	now := s.now()
	deadline, err := deadlineOr(in.ResponseDeadline, now, s.settings.ResponseWindow)
	if err != nil {
		return domain.Participation{}, err
	}

	p := domain.Participation{
		ExhibitionID:     ex.ID,
		InstitutionID:    inst.ID,
		Kind:             in.Kind,
		Status:           domain.ParticipationInvited,
		Fee:              in.Fee,
		OrgRequirements:  in.OrgRequirements,
		ResponseDeadline: deadline,
		InvitedAt:        now,
	}
	if caps.Pays {
		p.PaymentStatus = domain.PaymentUnpaid
	}

	created, err := s.repo.Invite(ctx, p,
		[]domain.ExhibitionStatus{domain.ExhibitionVenueApproved, domain.ExhibitionPlanning}, domain.ExhibitionPlanning)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.Invite -> %w", err)
	}

	return created, nil
}

// Register is an institution's answer to its invitation. Universities reserve their booths here.
func (s *ParticipationService) Register(ctx context.Context, actor domain.Actor, id uint, in RegisterInput) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ActAsParticipant)
	if err != nil {
		return domain.Participation{}, err
	}

	caps := p.Capabilities()
	if caps.Proposes {
		return domain.Participation{}, domain.Invalid("a %s answers with a proposal", p.Kind)
	}
	if err = ex.Require(domain.ExhibitionPlanning); err != nil {
		return domain.Participation{}, err
	}
	if err = s.enforceDeadline(ctx, p, ex); err != nil {
		return domain.Participation{}, err
	}

	next, err := p.Advance(domain.ActionSubmit, s.now())
	if err != nil {
		return domain.Participation{}, err
	}

	booths := 0
	if caps.HasBooths {
		if in.RequestedBooths <= 0 {
			return domain.Participation{}, domain.Invalid("requested booths must be positive")
		}
		booths = in.RequestedBooths
		if err = ex.CheckReservation(booths, ex.BoothCap(p.Kind)); err != nil {
			return domain.Participation{}, err
		}
	}

	next.RequestedBooths = booths
	next.BoothDetails = in.BoothDetails
	next.ExpectedVisitors = in.ExpectedVisitors

	return s.apply(ctx, domain.ParticipationChange{
		Participation: next,
		From:          p.Status,
		Reserve:       booths,
		KindCap:       ex.BoothCap(p.Kind),
	})
}

// Propose submits (or, after a rejection, resubmits) a provider's costed proposal. Booths are only
// reserved once the organizer approves it.
func (s *ParticipationService) Propose(ctx context.Context, actor domain.Actor, id uint, in ProposeInput) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ActAsParticipant)
	if err != nil {
		return domain.Participation{}, err
	}

	if !p.Capabilities().Proposes {
		return domain.Participation{}, domain.Invalid("a %s registers instead of proposing", p.Kind)
	}
	if err = ex.Require(domain.ExhibitionPlanning); err != nil {
		return domain.Participation{}, err
	}
	if err = s.enforceDeadline(ctx, p, ex); err != nil {
		return domain.Participation{}, err
	}

	next, err := p.Advance(domain.ActionSubmit, s.now())
	if err != nil {
		return domain.Participation{}, err
	}

	if in.Cost.IsNegative() {
		return domain.Participation{}, domain.Invalid("proposed cost cannot be negative")
	}
	activities, err := s.providerActivities(ctx, p, in.ActivityIDs)
	if err != nil {
		return domain.Participation{}, err
	}
	if err = ex.CheckReservation(len(activities), ex.BoothCap(p.Kind)); err != nil {
		return domain.Participation{}, err
	}

	next.Proposal = in.Proposal
	next.ProposedCost = in.Cost
	next.ActivityIDs = activityIDs(activities)
	next.RequestedBooths = len(activities)
	next.ExpectedVisitors = in.ExpectedVisitors
	next.OrgResponse = ""

	return s.apply(ctx, domain.ParticipationChange{
		Participation:     next,
		From:              p.Status,
		ReplaceActivities: true,
	})
}

// Review is the organizer's decision on a registration or proposal. Approval materializes the
// participant's booths; rejection releases whatever it holds.
func (s *ParticipationService) Review(ctx context.Context, actor domain.Actor, id uint, approve bool, response string) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ManageExhibition)
	if err != nil {
		return domain.Participation{}, err
	}

	if err = ex.Require(domain.ExhibitionPlanning); err != nil {
		return domain.Participation{}, err
	}
	if err = s.enforceDeadline(ctx, p, ex); err != nil {
		return domain.Participation{}, err
	}

	now := s.now()
	action := domain.ActionReject
	if approve {
		action = domain.ActionApprove
	}
	next, err := p.Advance(action, now)
	if err != nil {
		return domain.Participation{}, err
	}
	next.OrgResponse = response

	change := domain.ParticipationChange{Participation: next, From: p.Status}
	if !approve {
		if next.Status == domain.ParticipationCancelled {
			next.CancelledAt = &now
			next.CancelReason = response
			change.Participation = next
		}
		change.Release = true

		return s.apply(ctx, change)
	}

	caps := p.Capabilities()
	switch {
	case caps.Proposes:
		activities, err := s.providerActivities(ctx, p, p.ActivityIDs)
		if err != nil {
			return domain.Participation{}, err
		}
		change.Reserve = len(activities)
		change.KindCap = ex.BoothCap(p.Kind)
		change.Booths = allocateBooths(p, len(activities), activities)
	case caps.HasBooths:
		change.Booths = allocateBooths(p, p.ReservedBooths, nil)
	}

	change.Participation.ApprovedBoothsCount = len(change.Booths)
	change.Participation.ConfirmationDeadline, err = deadlineOr(nil, now, s.settings.ConfirmationWindow)
	if err != nil {
		return domain.Participation{}, err
	}

	return s.apply(ctx, change)
}

// ConfirmPayment records a paying participant's fee, which confirms it.
func (s *ParticipationService) ConfirmPayment(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ManageExhibition)
	if err != nil {
		return domain.Participation{}, err
	}

	if !p.Capabilities().Pays {
		return domain.Participation{}, domain.Invalid("a %s has no fee to pay", p.Kind)
	}
	if err = ex.Require(domain.ExhibitionPlanning); err != nil {
		return domain.Participation{}, err
	}
	if err = s.enforceDeadline(ctx, p, ex); err != nil {
		return domain.Participation{}, err
	}

	now := s.now()
	next, err := p.Advance(domain.ActionConfirm, now)
	if err != nil {
		return domain.Participation{}, err
	}
	next.PaymentStatus = domain.PaymentPaid
	next.PaymentDate = &now

	return s.apply(ctx, domain.ParticipationChange{Participation: next, From: p.Status})
}

// Confirm is a non-paying participant's own confirmation after approval.
func (s *ParticipationService) Confirm(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ActAsParticipant)
	if err != nil {
		return domain.Participation{}, err
	}

	if p.Capabilities().Pays {
		return domain.Participation{}, domain.Invalid("a %s is confirmed when its payment is recorded", p.Kind)
	}

	return s.advance(ctx, p, ex, domain.ActionConfirm, domain.ExhibitionPlanning)
}

func (s *ParticipationService) Finalize(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ActAsParticipant)
	if err != nil {
		return domain.Participation{}, err
	}

	return s.advance(ctx, p, ex, domain.ActionFinalize, domain.ExhibitionConfirmed)
}

// MarkAttendance records that a participant showed up, adding its expected visitors to the
// exhibition's actual visitor count.
func (s *ParticipationService) MarkAttendance(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.ManageExhibition)
	if err != nil {
		return domain.Participation{}, err
	}

	if err = requireStatus(ex, domain.ExhibitionActive); err != nil {
		return domain.Participation{}, err
	}

	next, err := p.Advance(domain.ActionAttend, s.now())
	if err != nil {
		return domain.Participation{}, err
	}

	return s.apply(ctx, domain.ParticipationChange{Participation: next, From: p.Status, AddVisitors: p.ExpectedVisitors})
}

// Cancel withdraws a participation. A second cancel fails with ErrInvalidState and changes nothing.
func (s *ParticipationService) Cancel(ctx context.Context, actor domain.Actor, id uint, reason string) (domain.Participation, error) {
	p, ex, err := s.load(ctx, actor, id, authz.CancelParticipation)
	if err != nil {
		return domain.Participation{}, err
	}

	if ex.Status.IsLocked() {
		return domain.Participation{}, ErrLockedPhase
	}

	change, err := p.Cancellation(reason, s.now())
	if err != nil {
		return domain.Participation{}, err
	}

	return s.apply(ctx, change)
}

func (s *ParticipationService) Get(ctx context.Context, actor domain.Actor, id uint) (domain.Participation, error) {
	p, _, err := s.load(ctx, actor, id, authz.CancelParticipation)
	if err != nil {
		return domain.Participation{}, err
	}

	return p, nil
}

func (s *ParticipationService) ListByExhibition(ctx context.Context, actor domain.Actor, exhibitionID uint, kind domain.Kind) ([]domain.Participation, error) {
	chain, err := s.owners.ExhibitionOwners(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.owners.ExhibitionOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, authz.ManageExhibition); err != nil {
		return nil, err
	}

	if kind != "" && !kind.Valid() {
		return nil, domain.Invalid("unknown participant kind %q", kind)
	}

	participations, err := s.repo.ListByExhibition(ctx, exhibitionID, kind)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByExhibition -> %w", err)
	}

	return participations, nil
}

// ExpireLapsed cancels every participation whose deadline has passed, through the same path
// lazy enforcement uses. It returns how many were cancelled.
func (s *ParticipationService) ExpireLapsed(ctx context.Context) (int, error) {
	now := s.now()

	candidates, err := s.repo.ListDeadlineCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("s.repo.ListDeadlineCandidates -> %w", err)
	}

	exhibitions := make(map[uint]domain.Exhibition)
	expired := 0
	for _, p := range candidates {
		ex, ok := exhibitions[p.ExhibitionID]
		if !ok {
			ex, err = s.exRepo.FindByID(ctx, p.ExhibitionID)
			if err != nil {
				return expired, fmt.Errorf("s.exRepo.FindByID -> %w", err)
			}
			exhibitions[ex.ID] = ex
		}

		if !p.DeadlineLapsed(ex, now) {
			continue
		}

		err = s.expire(ctx, p)
		if errors.Is(err, ErrInvalidState) {
			// moved on since it was listed
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
	}

	return expired, nil
}

func (s *ParticipationService) load(ctx context.Context, actor domain.Actor, id uint, capability authz.Capability) (domain.Participation, domain.Exhibition, error) {
	chain, err := s.owners.ParticipationOwners(ctx, id)
	if err != nil {
		return domain.Participation{}, domain.Exhibition{}, fmt.Errorf("s.owners.ParticipationOwners -> %w", err)
	}
	if err = authz.Check(actor, chain, capability); err != nil {
		return domain.Participation{}, domain.Exhibition{}, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	ex, err := s.exRepo.FindByID(ctx, p.ExhibitionID)
	if err != nil {
		return domain.Participation{}, domain.Exhibition{}, fmt.Errorf("s.exRepo.FindByID -> %w", err)
	}

	return p, ex, nil
}

func (s *ParticipationService) advance(ctx context.Context, p domain.Participation, ex domain.Exhibition, a domain.Action, phase domain.ExhibitionStatus) (domain.Participation, error) {
	if err := ex.Require(phase); err != nil {
		return domain.Participation{}, err
	}
	if err := s.enforceDeadline(ctx, p, ex); err != nil {
		return domain.Participation{}, err
	}

	next, err := p.Advance(a, s.now())
	if err != nil {
		return domain.Participation{}, err
	}

	return s.apply(ctx, domain.ParticipationChange{Participation: next, From: p.Status})
}

// enforceDeadline cancels p when the deadline guarding its status has passed and reports
// ErrDeadlinePassed. The cancellation is committed even though the caller's operation fails.
func (s *ParticipationService) enforceDeadline(ctx context.Context, p domain.Participation, ex domain.Exhibition) error {
	if !p.DeadlineLapsed(ex, s.now()) {
		return nil
	}

	if err := s.expire(ctx, p); err != nil {
		return err
	}

	return fmt.Errorf("participation %d -> %w", p.ID, ErrDeadlinePassed)
}

func (s *ParticipationService) expire(ctx context.Context, p domain.Participation) error {
	change, err := p.Cancellation(deadlineCancelReason, s.now())
	if err != nil {
		return err
	}

	if _, err = s.repo.Apply(ctx, change); err != nil {
		return fmt.Errorf("s.repo.Apply -> %w", err)
	}

	zap.L().Info("participation cancelled after deadline",
		zap.Uint("participation_id", p.ID),
		zap.Uint("exhibition_id", p.ExhibitionID),
		zap.String("status", string(p.Status)),
	)

	return nil
}

func (s *ParticipationService) apply(ctx context.Context, change domain.ParticipationChange) (domain.Participation, error) {
	updated, err := s.repo.Apply(ctx, change)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.Apply -> %w", err)
	}

	return updated, nil
}

// providerActivities loads the proposed activities, which must belong to the participant and be active.
func (s *ParticipationService) providerActivities(ctx context.Context, p domain.Participation, ids []uint) ([]domain.Activity, error) {
	if len(ids) == 0 {
		return nil, domain.Invalid("a proposal needs at least one activity")
	}

	activities, err := s.dirRepo.FindActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.dirRepo.FindActivities -> %w", err)
	}

	for _, a := range activities {
		if a.ProviderID != p.InstitutionID {
			return nil, domain.Invalid("activity %d belongs to another provider", a.ID)
		}
		if !a.Active {
			return nil, domain.Invalid("activity %d is inactive", a.ID)
		}
	}

	return activities, nil
}

func activityIDs(activities []domain.Activity) []uint {
	ids := make([]uint, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}

	return ids
}
