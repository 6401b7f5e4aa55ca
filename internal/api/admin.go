package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) adminStats(c echo.Context) error {
	counts, err := s.store.Counts(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// adminDeleteVouchesByTrade removes a trade's vouches and backs the ratings
// out of the rated users' aggregates.
func (s *Server) adminDeleteVouchesByTrade(c echo.Context) error {
	removed, err := s.vouches.RemoveByTrade(c.Request().Context(), c.Param("trade_id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

func (s *Server) adminDeleteVouchesByPair(c echo.Context) error {
	raterID, err := strconv.ParseInt(c.QueryParam("rater_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rater_id"})
	}
	ratedID, err := strconv.ParseInt(c.QueryParam("rated_user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rated_user_id"})
	}

	removed, err := s.vouches.RemoveByPair(c.Request().Context(), raterID, ratedID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

func (s *Server) adminClearVouches(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.vouches.ClearUser(c.Request().Context(), userID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cleared"})
}

// adminResetUser wipes a user's stats, listings and vouches. Trade history is
// deliberately kept.
func (s *Server) adminResetUser(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.store.ResetUser(c.Request().Context(), userID); err != nil {
		return s.fail(c, err)
	}
	s.log.Info("user reset", "user", userID)
	return c.JSON(http.StatusOK, echo.Map{"status": "reset"})
}

func (s *Server) adminTicketCounts(c echo.Context) error {
	open, total, err := s.tickets.Counts(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"open": open, "closed": total - open, "total": total})
}
