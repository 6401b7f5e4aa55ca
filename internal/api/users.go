package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// userProfile serves the reputation card: sales, purchases and the average
// rating. A user with no ratings gets average_rating null rather than 0.
func (s *Server) userProfile(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	rep, err := s.store.GetStats(c.Request().Context(), userID)
	if err != nil {
		return s.fail(c, err)
	}

	var average interface{}
	if avg, ok := rep.AverageRating(); ok {
		average = avg
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":        rep.UserID,
		"username":       rep.Username,
		"sales":          rep.Sales,
		"purchases":      rep.Purchases,
		"rating_count":   rep.RatingCount,
		"average_rating": average,
	})
}

func (s *Server) userVouches(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	vouches, err := s.store.ListVouchesForUser(c.Request().Context(), userID, limit)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vouches": vouches})
}

func (s *Server) userListings(c echo.Context) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	listings, err := s.store.ListUserListings(c.Request().Context(), userID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": listings})
}
