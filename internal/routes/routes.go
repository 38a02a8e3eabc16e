package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/cache"
	"github.com/hochlab/lab-booking/internal/config"
	"github.com/hochlab/lab-booking/internal/handlers"
	infraRepo "github.com/hochlab/lab-booking/internal/infra/repository"
	"github.com/hochlab/lab-booking/internal/messaging"
	"github.com/hochlab/lab-booking/internal/middleware"
	"github.com/hochlab/lab-booking/internal/roomlock"
	"github.com/hochlab/lab-booking/internal/storage"
	"github.com/hochlab/lab-booking/internal/timezone"
	ucAppointment "github.com/hochlab/lab-booking/internal/usecase/appointment"
	ucTimeslot "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	calCache *cache.CalendarCache,
	events *messaging.Dispatcher,
	store *storage.RecordingStorage,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	timeslotRepo := infraRepo.NewTimeslotGormRepository(db)
	locks := roomlock.NewRegistry()

	// ======================================================
	// USE CASES — TIMESLOTS
	// ======================================================
	createTimeslotUC := ucTimeslot.NewCreateTimeslot(timeslotRepo, locks, events, calCache)
	createSeriesUC := ucTimeslot.NewCreateTimeslotSeries(timeslotRepo, locks, events, calCache)
	updateTimeslotUC := ucTimeslot.NewUpdateTimeslot(timeslotRepo, locks, calCache)
	updateSeriesUC := ucTimeslot.NewUpdateTimeslotSeries(timeslotRepo, locks, calCache)
	deleteTimeslotUC := ucTimeslot.NewDeleteTimeslot(timeslotRepo, locks, events, calCache)
	deleteSeriesUC := ucTimeslot.NewDeleteTimeslotSeries(timeslotRepo, locks, calCache)
	listTimeslotsUC := ucTimeslot.NewListTimeslots(timeslotRepo)
	loc := timezone.Location(cfg.Timezone)
	calendarUC := ucTimeslot.NewGetCalendar(timeslotRepo, calCache, loc)
	availabilityUC := ucTimeslot.NewGetAvailabilityCalendar(timeslotRepo, calCache, loc)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		timeslotRepo,
		createTimeslotUC,
		createSeriesUC,
		events,
	)
	setAppointmentStatusUC := ucAppointment.NewSetAppointmentStatus(
		timeslotRepo,
		updateTimeslotUC,
		events,
	)
	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(
		timeslotRepo,
		deleteTimeslotUC,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	userHandler := handlers.NewUserHandler(db)
	roomHandler := handlers.NewRoomHandler(db, calCache)

	timeslotHandler := handlers.NewTimeslotHandler(
		createTimeslotUC,
		createSeriesUC,
		updateTimeslotUC,
		updateSeriesUC,
		deleteTimeslotUC,
		deleteSeriesUC,
		listTimeslotsUC,
		calendarUC,
		availabilityUC,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		setAppointmentStatusUC,
		deleteAppointmentUC,
	)

	orderHandler := handlers.NewOrderHandler(db)
	settingHandler := handlers.NewSettingHandler(db)
	messageHandler := handlers.NewMessageHandler(db)
	recordingHandler := handlers.NewRecordingHandler(db, store)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.Get)

			// Rooms
			secured.GET("/rooms", roomHandler.List)
			secured.GET("/rooms/:roomId", roomHandler.Get)

			// Timeslots
			secured.GET("/rooms/:roomId/timeslots", timeslotHandler.List)
			secured.GET("/rooms/:roomId/calendar", timeslotHandler.Calendar)
			secured.GET("/rooms/:roomId/availability-calendar", timeslotHandler.AvailabilityCalendar)

			// Appointments (self-service booking)
			secured.POST("/rooms/:roomId/appointments", appointmentHandler.Create)
			secured.POST("/rooms/:roomId/appointments/series", appointmentHandler.CreateSeries)
			secured.DELETE("/rooms/:roomId/appointments/:id", appointmentHandler.Delete)

			// Orders
			secured.POST("/orders", orderHandler.Create)
			secured.GET("/orders", orderHandler.List)
			secured.DELETE("/orders/:id", orderHandler.Delete)

			// Messages
			secured.GET("/messages", messageHandler.List)
			secured.PATCH("/messages/:id/read", messageHandler.MarkRead)
			secured.DELETE("/messages/:id", messageHandler.Delete)

			// Recordings
			secured.POST("/rooms/:roomId/recordings", recordingHandler.Create)
			secured.GET("/recordings", recordingHandler.List)
			secured.GET("/recordings/:id/download", recordingHandler.Download)
			secured.DELETE("/recordings/:id", recordingHandler.Delete)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/rooms", roomHandler.Create)
				admin.PATCH("/rooms/:roomId", roomHandler.Update)
				admin.DELETE("/rooms/:roomId", roomHandler.Delete)

				admin.POST("/rooms/:roomId/timeslots", timeslotHandler.Create)
				admin.POST("/rooms/:roomId/timeslots/series", timeslotHandler.CreateSeries)
				admin.PATCH("/rooms/:roomId/timeslots/series/:seriesId", timeslotHandler.UpdateSeries)
				admin.PATCH("/rooms/:roomId/timeslots/:id", timeslotHandler.Update)
				admin.DELETE("/rooms/:roomId/timeslots/series/:seriesId", timeslotHandler.DeleteSeries)
				admin.DELETE("/rooms/:roomId/timeslots/:id", timeslotHandler.Delete)

				admin.PATCH("/rooms/:roomId/appointments/:id/status", appointmentHandler.SetStatus)

				admin.GET("/users", userHandler.List)
				admin.PATCH("/users/:id/role", userHandler.SetRole)

				admin.PATCH("/orders/:id/status", orderHandler.SetStatus)

				admin.GET("/settings", settingHandler.List)
				admin.PUT("/settings/:key", settingHandler.Upsert)
				admin.DELETE("/settings/:key", settingHandler.Delete)
			}
		}
	}
}
