package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/careerexpo/exhibition-api/internal/authz"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

// MockOwnerRepo is a mock implementation of OwnerRepository
type MockOwnerRepo struct {
	mock.Mock
}

func (m *MockOwnerRepo) ExhibitionOwners(ctx context.Context, exhibitionID uint) (authz.OwnerChain, error) {
	args := m.Called(ctx, exhibitionID)
	return args.Get(0).(authz.OwnerChain), args.Error(1)
}

func (m *MockOwnerRepo) VenueRequestOwners(ctx context.Context, requestID uint) (authz.OwnerChain, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(authz.OwnerChain), args.Error(1)
}

func (m *MockOwnerRepo) ParticipationOwners(ctx context.Context, participationID uint) (authz.OwnerChain, error) {
	args := m.Called(ctx, participationID)
	return args.Get(0).(authz.OwnerChain), args.Error(1)
}

func (m *MockOwnerRepo) RegistrationOwners(ctx context.Context, registrationID uint) (authz.OwnerChain, error) {
	args := m.Called(ctx, registrationID)
	return args.Get(0).(authz.OwnerChain), args.Error(1)
}

// MockDirectoryRepo is a mock implementation of DirectoryRepository
type MockDirectoryRepo struct {
	mock.Mock
}

func (m *MockDirectoryRepo) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	args := m.Called(ctx, org)
	return args.Get(0).(domain.Organization), args.Error(1)
}

func (m *MockDirectoryRepo) FindOrganization(ctx context.Context, id uint) (domain.Organization, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Organization), args.Error(1)
}

func (m *MockDirectoryRepo) CreateMunicipality(ctx context.Context, mu domain.Municipality) (domain.Municipality, error) {
	args := m.Called(ctx, mu)
	return args.Get(0).(domain.Municipality), args.Error(1)
}

func (m *MockDirectoryRepo) FindMunicipality(ctx context.Context, id uint) (domain.Municipality, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Municipality), args.Error(1)
}

func (m *MockDirectoryRepo) CreateVenue(ctx context.Context, v domain.Venue) (domain.Venue, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(domain.Venue), args.Error(1)
}

func (m *MockDirectoryRepo) FindVenue(ctx context.Context, id uint) (domain.Venue, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Venue), args.Error(1)
}

func (m *MockDirectoryRepo) ListVenues(ctx context.Context, activeOnly bool) ([]domain.Venue, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Venue), args.Error(1)
}

func (m *MockDirectoryRepo) CreateInstitution(ctx context.Context, i domain.Institution) (domain.Institution, error) {
	args := m.Called(ctx, i)
	return args.Get(0).(domain.Institution), args.Error(1)
}

func (m *MockDirectoryRepo) FindInstitution(ctx context.Context, id uint) (domain.Institution, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Institution), args.Error(1)
}

func (m *MockDirectoryRepo) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Activity), args.Error(1)
}

func (m *MockDirectoryRepo) FindActivities(ctx context.Context, ids []uint) ([]domain.Activity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

// MockExhibitionRepo is a mock implementation of ExhibitionRepository
type MockExhibitionRepo struct {
	mock.Mock
}

func (m *MockExhibitionRepo) Create(ctx context.Context, ex domain.Exhibition) (domain.Exhibition, error) {
	args := m.Called(ctx, ex)
	return args.Get(0).(domain.Exhibition), args.Error(1)
}

func (m *MockExhibitionRepo) FindByID(ctx context.Context, id uint) (domain.Exhibition, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Exhibition), args.Error(1)
}

func (m *MockExhibitionRepo) List(ctx context.Context, organizationID uint) ([]domain.Exhibition, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Exhibition), args.Error(1)
}

// Transition is recorded as two calls: "LockedState" supplies what the plan sees under the lock
// and "Apply" receives the change it produced.
func (m *MockExhibitionRepo) Transition(ctx context.Context, id uint, plan domain.ExhibitionPlan) (domain.Exhibition, error) {
	args := m.MethodCalled("LockedState", ctx, id)
	if err := args.Error(1); err != nil {
		return domain.Exhibition{}, err
	}

	change, err := plan(args.Get(0).(domain.ExhibitionState))
	if err != nil {
		return domain.Exhibition{}, err
	}

	args = m.MethodCalled("Apply", ctx, change)
	return args.Get(0).(domain.Exhibition), args.Error(1)
}

func (m *MockExhibitionRepo) FindFinancial(ctx context.Context, exhibitionID uint) (domain.ExhibitionFinancial, error) {
	args := m.Called(ctx, exhibitionID)
	return args.Get(0).(domain.ExhibitionFinancial), args.Error(1)
}

func (m *MockExhibitionRepo) ListFinancials(ctx context.Context, organizationID uint) ([]domain.ExhibitionFinancial, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExhibitionFinancial), args.Error(1)
}

func (m *MockExhibitionRepo) CountByStatus(ctx context.Context, organizationID uint) (map[string]int64, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockVenueRequestRepo is a mock implementation of VenueRequestRepository
type MockVenueRequestRepo struct {
	mock.Mock
}

func (m *MockVenueRequestRepo) Create(ctx context.Context, vr domain.VenueRequest) (domain.VenueRequest, error) {
	args := m.Called(ctx, vr)
	return args.Get(0).(domain.VenueRequest), args.Error(1)
}

func (m *MockVenueRequestRepo) FindByID(ctx context.Context, id uint) (domain.VenueRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.VenueRequest), args.Error(1)
}

func (m *MockVenueRequestRepo) ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.VenueRequest, error) {
	args := m.Called(ctx, exhibitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VenueRequest), args.Error(1)
}

func (m *MockVenueRequestRepo) ApprovedBookings(ctx context.Context, venueID, exhibitionID uint) ([]domain.VenueBooking, error) {
	args := m.Called(ctx, venueID, exhibitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VenueBooking), args.Error(1)
}

func (m *MockVenueRequestRepo) Review(ctx context.Context, vr domain.VenueRequest, ex domain.Exhibition) (domain.VenueRequest, error) {
	args := m.Called(ctx, vr, ex)
	return args.Get(0).(domain.VenueRequest), args.Error(1)
}

// MockParticipationRepo is a mock implementation of ParticipationRepository
type MockParticipationRepo struct {
	mock.Mock
}

func (m *MockParticipationRepo) Invite(ctx context.Context, p domain.Participation, statuses []domain.ExhibitionStatus, advanceTo domain.ExhibitionStatus) (domain.Participation, error) {
	args := m.Called(ctx, p, statuses, advanceTo)
	return args.Get(0).(domain.Participation), args.Error(1)
}

func (m *MockParticipationRepo) FindByID(ctx context.Context, id uint) (domain.Participation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Participation), args.Error(1)
}

func (m *MockParticipationRepo) ListByExhibition(ctx context.Context, exhibitionID uint, kind domain.Kind) ([]domain.Participation, error) {
	args := m.Called(ctx, exhibitionID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Participation), args.Error(1)
}

func (m *MockParticipationRepo) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]domain.Participation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Participation), args.Error(1)
}

func (m *MockParticipationRepo) Apply(ctx context.Context, ch domain.ParticipationChange) (domain.Participation, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(domain.Participation), args.Error(1)
}

// MockBoothRepo is a mock implementation of BoothRepository
type MockBoothRepo struct {
	mock.Mock
}

func (m *MockBoothRepo) ListByExhibition(ctx context.Context, exhibitionID uint) ([]domain.Booth, error) {
	args := m.Called(ctx, exhibitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booth), args.Error(1)
}

func (m *MockBoothRepo) Reassign(ctx context.Context, exhibitionID uint, allocations []domain.BoothAllocation, schedule json.RawMessage, statuses []domain.ExhibitionStatus) error {
	args := m.Called(ctx, exhibitionID, allocations, schedule, statuses)
	return args.Error(0)
}

func (m *MockBoothRepo) SumMaxParticipants(ctx context.Context, exhibitionID uint) (int, error) {
	args := m.Called(ctx, exhibitionID)
	return args.Int(0), args.Error(1)
}

// MockStudentRepo is a mock implementation of StudentRepository
type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, reg domain.StudentRegistration) (domain.StudentRegistration, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentRepo) FindByID(ctx context.Context, id uint) (domain.StudentRegistration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentRepo) FindLive(ctx context.Context, exhibitionID, studentID uint) (domain.StudentRegistration, error) {
	args := m.Called(ctx, exhibitionID, studentID)
	return args.Get(0).(domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentRepo) ListByStudent(ctx context.Context, studentID uint) ([]domain.StudentRegistration, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentRepo) CountApproved(ctx context.Context, exhibitionID uint) (int, error) {
	args := m.Called(ctx, exhibitionID)
	return args.Int(0), args.Error(1)
}

func (m *MockStudentRepo) Update(ctx context.Context, reg domain.StudentRegistration, from domain.StudentRegistration, visitors int) (domain.StudentRegistration, error) {
	args := m.Called(ctx, reg, from, visitors)
	return args.Get(0).(domain.StudentRegistration), args.Error(1)
}

func (m *MockStudentRepo) CreateFeedback(ctx context.Context, fb domain.ExhibitionFeedback) (domain.ExhibitionFeedback, error) {
	args := m.Called(ctx, fb)
	return args.Get(0).(domain.ExhibitionFeedback), args.Error(1)
}

func (m *MockStudentRepo) ListFeedback(ctx context.Context, exhibitionID uint) ([]domain.ExhibitionFeedback, error) {
	args := m.Called(ctx, exhibitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExhibitionFeedback), args.Error(1)
}

// Fixtures shared by the service tests: one organization owner, one institution admin per kind.
var (
	orgOwner      = domain.Actor{UserID: 1, Role: domain.RoleOrgOwner}
	universityAdm = domain.Actor{UserID: 2, Role: domain.RoleUniversityAdmin}
	schoolAdm     = domain.Actor{UserID: 3, Role: domain.RoleSchoolAdmin}
	providerAdm   = domain.Actor{UserID: 4, Role: domain.RoleProviderAdmin}
	municipalAdm  = domain.Actor{UserID: 5, Role: domain.RoleMunicipalityAdmin}
	student       = domain.Actor{UserID: 6, Role: domain.RoleStudent}
)

func testSettings() Settings {
	return Settings{
		ResponseWindow:     7 * 24 * time.Hour,
		ConfirmationWindow: 7 * 24 * time.Hour,
		FinalizationWindow: 3 * 24 * time.Hour,
		StandardBoothSqm:   9,
	}
}

func chainFor(p domain.Participation) authz.OwnerChain {
	admin := map[domain.Kind]uint{
		domain.KindUniversity: universityAdm.UserID,
		domain.KindSchool:     schoolAdm.UserID,
		domain.KindProvider:   providerAdm.UserID,
	}[p.Kind]

	return authz.OwnerChain{
		OrganizationOwnerID: orgOwner.UserID,
		ParticipantKind:     p.Kind,
		ParticipantAdminID:  admin,
	}
}

func planningExhibition() domain.Exhibition {
	return domain.Exhibition{
		ID:                     10,
		OrganizationID:         20,
		Title:                  "Spring Careers",
		Status:                 domain.ExhibitionPlanning,
		StartDate:              time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAvailableBooths:   10,
		MaxBoothsPerUniversity: 5,
		MaxBoothsPerProvider:   3,
		BoothsReserved:         6,
	}
}

func deadlineIn(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}
