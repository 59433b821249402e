// Package http exposes a small read-only operations API.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"eventbot/internal/application"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// ReminderLister reports the active reminders.
type ReminderLister interface {
	Active() []application.Reminder
}

type Server struct {
	echo      *echo.Echo
	addr      string
	events    output.EventRepository
	reminders ReminderLister
	loc       *time.Location
}

func NewServer(addr string, events output.EventRepository, reminders ReminderLister, loc *time.Location) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, addr: addr, events: events, reminders: reminders, loc: loc}
	s.Register(e.Group(""))
	return s
}

func (s *Server) Register(g *echo.Group) {
	g.GET("/healthz", s.health)
	api := g.Group("/api")
	api.GET("/events", s.searchEvents)
	api.GET("/reminders", s.listReminders)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("http server listening", slog.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type eventDTO struct {
	ID          uint           `json:"id"`
	Owner       string         `json:"owner"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
	RSVP        map[string]int `json:"rsvp"`
}

func (s *Server) searchEvents(c echo.Context) error {
	events, err := s.events.SearchByTitle(c.Request().Context(), c.QueryParam("q"), c.QueryParam("owner"))
	if err != nil {
		slog.Error("http: search events", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	out := make([]eventDTO, 0, len(events))
	for i := range events {
		out = append(out, s.toDTO(&events[i]))
	}
	return c.JSON(http.StatusOK, out)
}

type reminderDTO struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	OwnerID    string    `json:"owner_id"`
	EventID    uint      `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EveryHours int       `json:"every_hours"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) listReminders(c echo.Context) error {
	active := s.reminders.Active()
	out := make([]reminderDTO, 0, len(active))
	for _, r := range active {
		out = append(out, reminderDTO{
			ID:         r.ID,
			ChatID:     r.ChatID,
			OwnerID:    r.OwnerID,
			EventID:    r.EventID,
			EventTitle: r.EventTitle,
			EveryHours: r.Hours(),
			CreatedAt:  r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) toDTO(e *entities.Event) eventDTO {
	dto := eventDTO{
		ID:          e.ID,
		Owner:       e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		RSVP:        map[string]int{},
	}
	if !e.ScheduledAt.IsZero() {
		at := e.ScheduledAt.In(s.loc)
		dto.ScheduledAt = &at
	}
	for _, r := range e.Responses {
		dto.RSVP[string(r.Status)]++
	}
	return dto
}
