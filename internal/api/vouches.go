package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scubahq/tradevault/internal/domain"
)

type submitRatingRequest struct {
	TradeID string      `json:"trade_id"`
	Role    domain.Role `json:"role"`
	RaterID int64       `json:"rater_id"`
	RatedID int64       `json:"rated_user_id"`
	Rating  int         `json:"rating"`
	Comment string      `json:"comment"`
}

func (s *Server) submitRating(c echo.Context) error {
	req := new(submitRatingRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	published, err := s.vouches.SubmitRating(c.Request().Context(), req.TradeID, req.Role, req.RaterID, req.RatedID, req.Rating, req.Comment)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"published": published})
}
