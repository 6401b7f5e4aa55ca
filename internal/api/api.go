// Package api exposes the bot core over HTTP. The gateway process (the
// Discord-facing bot) calls the operation endpoints; operators use the admin
// group.
package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/scubahq/tradevault/internal/auth"
	"github.com/scubahq/tradevault/internal/domain"
	"github.com/scubahq/tradevault/internal/listing"
	"github.com/scubahq/tradevault/internal/middleware"
	"github.com/scubahq/tradevault/internal/store"
	"github.com/scubahq/tradevault/internal/ticket"
	"github.com/scubahq/tradevault/internal/trade"
	"github.com/scubahq/tradevault/internal/vouch"
)

// Server bundles the managers behind the HTTP surface.
type Server struct {
	store    store.Store
	listings *listing.Manager
	trades   *trade.Manager
	vouches  *vouch.Collector
	tickets  *ticket.Manager
	login    *auth.Handler
	log      *slog.Logger
}

// New wires a Server.
func New(st store.Store, listings *listing.Manager, trades *trade.Manager, vouches *vouch.Collector, tickets *ticket.Manager, login *auth.Handler, logger *slog.Logger) *Server {
	return &Server{
		store:    st,
		listings: listings,
		trades:   trades,
		vouches:  vouches,
		tickets:  tickets,
		login:    login,
		log:      logger,
	}
}

// Register mounts all routes on e. jwtSecret signs both gateway and admin
// tokens; the role claim separates them.
func (s *Server) Register(e *echo.Echo, jwtSecret string) {
	e.Use(echomw.Recover())

	e.GET("/health", s.health)
	e.POST("/auth/login", s.login.Login)

	// Public read surface.
	e.GET("/users/:id/profile", s.userProfile)
	e.GET("/users/:id/vouches", s.userVouches)
	e.GET("/users/:id/listings", s.userListings)
	e.GET("/listings/:id", s.getListing)

	// Operations invoked by the gateway on behalf of Discord users.
	g := e.Group("/gateway", middleware.JWT(jwtSecret), middleware.RequireRoles("gateway", "admin"))
	g.POST("/listings", s.beginListing)
	g.POST("/listings/images", s.submitImages)
	g.PATCH("/listings/:id", s.editListing)
	g.DELETE("/listings/:id", s.cancelListing)
	g.POST("/trades", s.startTrade)
	g.POST("/trades/:id/confirm", s.confirmTrade)
	g.POST("/trades/:id/cancel", s.cancelTrade)
	g.POST("/vouches", s.submitRating)
	g.POST("/tickets", s.openTicket)
	g.POST("/tickets/close", s.closeTicket)

	// Operator-only surface.
	a := e.Group("/admin", middleware.JWT(jwtSecret), middleware.RequireRoles("admin"))
	a.GET("/stats", s.adminStats)
	a.DELETE("/vouches/trade/:trade_id", s.adminDeleteVouchesByTrade)
	a.DELETE("/vouches/pair", s.adminDeleteVouchesByPair)
	a.POST("/users/:id/clear_vouches", s.adminClearVouches)
	a.POST("/users/:id/reset", s.adminResetUser)
	a.GET("/tickets/counts", s.adminTicketCounts)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// fail translates sentinel errors into HTTP responses and hides internals
// behind a generic message on 500s.
func (s *Server) fail(c echo.Context, err error) error {
	status := domain.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), "err", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
