package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scubahq/tradevault/internal/domain"
)

type startTradeRequest struct {
	ListingID string `json:"listing_id"`
	BuyerID   int64  `json:"buyer_id"`
}

func (s *Server) startTrade(c echo.Context) error {
	req := new(startTradeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sess, err := s.trades.Start(c.Request().Context(), req.ListingID, req.BuyerID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"trade_id":   sess.ID,
		"buyer_id":   sess.BuyerID,
		"seller_id":  sess.SellerID,
		"channel_id": sess.Space.ChannelID,
	})
}

type tradeActionRequest struct {
	ActorID  int64 `json:"actor_id"`
	Overseer bool  `json:"overseer"`
}

func (s *Server) confirmTrade(c echo.Context) error {
	req := new(tradeActionRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sess, ok := s.trades.Get(c.Param("id"))
	if !ok {
		return s.fail(c, domain.ErrNotFound)
	}

	completed, err := s.trades.Confirm(c.Request().Context(), sess, req.ActorID, req.Overseer)
	if err != nil {
		return s.fail(c, err)
	}
	status := "waiting"
	if completed {
		status = "completed"
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

func (s *Server) cancelTrade(c echo.Context) error {
	req := new(tradeActionRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	sess, ok := s.trades.Get(c.Param("id"))
	if !ok {
		return s.fail(c, domain.ErrNotFound)
	}

	if err := s.trades.Cancel(c.Request().Context(), sess, req.ActorID, req.Overseer); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "canceled"})
}
