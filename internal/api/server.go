package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/careerexpo/exhibition-api/docs"
	v1 "github.com/careerexpo/exhibition-api/internal/api/handler/v1"
	"github.com/careerexpo/exhibition-api/internal/api/middleware"
	"github.com/careerexpo/exhibition-api/internal/config"
	"github.com/careerexpo/exhibition-api/internal/domain"
	"github.com/careerexpo/exhibition-api/internal/repository"
	"github.com/careerexpo/exhibition-api/internal/repository/dao"
	"github.com/careerexpo/exhibition-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// Participations is shared with the deadline sweeper.
	Participations *service.ParticipationService
}

type handlers struct {
	auth          *v1.AuthHandler
	user          *v1.UserHandler
	directory     *v1.DirectoryHandler
	exhibition    *v1.ExhibitionHandler
	venue         *v1.VenueHandler
	participation *v1.ParticipationHandler
	booth         *v1.BoothHandler
	settlement    *v1.SettlementHandler
	student       *v1.StudentHandler
	dashboard     *v1.DashboardHandler
}

// repositories holds one instance of every repository, shared by the services.
type repositories struct {
	user          *repository.UserRepository
	directory     *repository.DirectoryRepository
	owners        *repository.OwnerRepository
	exhibition    *repository.ExhibitionRepository
	venueRequest  *repository.VenueRequestRepository
	participation *repository.ParticipationRepository
	booth         *repository.BoothRepository
	student       *repository.StudentRepository
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(initRepositories(db)))

	return s
}

func initRepositories(db *gorm.DB) repositories {
	return repositories{
		user:          repository.NewUserRepository(dao.NewUserDAO(db)),
		directory:     repository.NewDirectoryRepository(dao.NewDirectoryDAO(db)),
		owners:        repository.NewOwnerRepository(dao.NewOwnerDAO(db)),
		exhibition:    repository.NewExhibitionRepository(dao.NewExhibitionDAO(db)),
		venueRequest:  repository.NewVenueRequestRepository(dao.NewVenueRequestDAO(db)),
		participation: repository.NewParticipationRepository(dao.NewParticipationDAO(db)),
		booth:         repository.NewBoothRepository(dao.NewBoothDAO(db)),
		student:       repository.NewStudentRepository(dao.NewStudentDAO(db)),
	}
}

func (s *Server) initHandlers(r repositories) handlers {
	settings := service.NewSettings(s.Config.Lifecycle)

	s.Participations = service.NewParticipationService(r.participation, r.exhibition, r.directory, r.owners, settings)

	return handlers{
		auth:          v1.NewAuthHandler(s.Config.API, service.NewAuthService(r.user)),
		user:          v1.NewUserHandler(service.NewUserService(r.user)),
		directory:     v1.NewDirectoryHandler(service.NewDirectoryService(r.directory)),
		exhibition:    v1.NewExhibitionHandler(service.NewExhibitionService(r.exhibition, r.directory, r.owners, settings)),
		venue:         v1.NewVenueHandler(service.NewVenueService(r.venueRequest, r.exhibition, r.directory, r.owners, settings)),
		participation: v1.NewParticipationHandler(s.Participations),
		booth:         v1.NewBoothHandler(service.NewBoothService(r.booth, r.exhibition, r.owners)),
		settlement:    v1.NewSettlementHandler(service.NewSettlementService(r.exhibition, r.participation, r.venueRequest, r.directory, r.owners, settings)),
		student:       v1.NewStudentHandler(service.NewStudentService(r.student, r.exhibition, r.booth, r.owners)),
		dashboard:     v1.NewDashboardHandler(service.NewDashboardService(r.exhibition, r.directory)),
	}
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", h.auth.HandleSignup)
		auth.POST("/auth/login", h.auth.HandleLogin)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/me", h.user.HandleGetMe)

		authed.POST("/organizations", h.directory.HandleCreateOrganization)
		authed.GET("/organizations/:organizationID/exhibitions", h.exhibition.HandleListOrganizationExhibitions)
		authed.POST("/municipalities", h.directory.HandleCreateMunicipality)
		authed.POST("/municipalities/:municipalityID/venues", h.directory.HandleCreateVenue)
		authed.GET("/venues", h.directory.HandleListVenues)
		authed.POST("/institutions", h.directory.HandleCreateInstitution)
		authed.POST("/institutions/:institutionID/activities", h.directory.HandleCreateActivity)

		authed.POST("/exhibitions", h.exhibition.HandleCreateExhibition)
		authed.GET("/exhibitions/:exhibitionID", h.exhibition.HandleGetExhibition)
		authed.POST("/exhibitions/:exhibitionID/start", h.exhibition.HandleStartExhibition)
		authed.POST("/exhibitions/:exhibitionID/complete", h.exhibition.HandleCompleteExhibition)
		authed.POST("/exhibitions/:exhibitionID/cancel", h.exhibition.HandleCancelExhibition)

		authed.POST("/exhibitions/:exhibitionID/venue-requests", h.venue.HandleRequestVenue)
		authed.GET("/exhibitions/:exhibitionID/venue-requests", h.venue.HandleListVenueRequests)
		authed.POST("/venue-requests/:requestID/review", h.venue.HandleReviewVenueRequest)

		authed.POST("/exhibitions/:exhibitionID/participations", h.participation.HandleInvite)
		authed.GET("/exhibitions/:exhibitionID/participations", h.participation.HandleListParticipations)
		authed.GET("/participations/:participationID", h.participation.HandleGetParticipation)
		authed.POST("/participations/:participationID/register", h.participation.HandleRegister)
		authed.POST("/participations/:participationID/propose", h.participation.HandlePropose)
		authed.POST("/participations/:participationID/review", h.participation.HandleReview)
		authed.POST("/participations/:participationID/confirm-payment", h.participation.HandleConfirmPayment)
		authed.POST("/participations/:participationID/confirm", h.participation.HandleConfirm)
		authed.POST("/participations/:participationID/finalize", h.participation.HandleFinalize)
		authed.POST("/participations/:participationID/attendance", h.participation.HandleMarkAttendance)
		authed.POST("/participations/:participationID/cancel", h.participation.HandleCancel)

		authed.GET("/exhibitions/:exhibitionID/booths", h.booth.HandleListBooths)
		authed.PUT("/exhibitions/:exhibitionID/booths", h.booth.HandleReassignBooths)

		authed.POST("/exhibitions/:exhibitionID/settle", h.settlement.HandleSettle)
		authed.GET("/exhibitions/:exhibitionID/financial", h.settlement.HandleGetFinancial)
		authed.GET("/exhibitions/:exhibitionID/recommended-fee", h.settlement.HandleRecommendedFee)

		authed.POST("/exhibitions/:exhibitionID/students", h.student.HandleRegisterStudent)
		authed.POST("/exhibitions/:exhibitionID/attendance", h.student.HandleStudentAttendance)
		authed.POST("/exhibitions/:exhibitionID/feedback", h.student.HandleSubmitFeedback)
		authed.GET("/exhibitions/:exhibitionID/feedback", h.student.HandleListFeedback)
		authed.POST("/student-registrations/:registrationID/approve", h.student.HandleApproveStudent)
		authed.POST("/student-registrations/:registrationID/cancel", h.student.HandleCancelStudent)
		authed.GET("/students/me/registrations", middleware.RequireRoles(domain.RoleStudent), h.student.HandleListMyRegistrations)

		authed.GET("/dashboard/overview",
			middleware.RequireRoles(domain.RoleOrgOwner, domain.RoleDeveloper), h.dashboard.HandleOverview)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Career Exhibition API"
	docs.SwaggerInfo.Description = "Plans career exhibitions from venue booking through settlement and student attendance."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
