package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type openTicketRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) openTicket(c echo.Context) error {
	req := new(openTicketRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	t, err := s.tickets.Open(c.Request().Context(), req.UserID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ticket": t})
}

type closeTicketRequest struct {
	ChannelID int64 `json:"channel_id"`
	ClosedBy  int64 `json:"closed_by"`
}

func (s *Server) closeTicket(c echo.Context) error {
	req := new(closeTicketRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := s.tickets.Close(c.Request().Context(), req.ChannelID, req.ClosedBy); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "closed"})
}
