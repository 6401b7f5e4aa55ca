package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scubahq/tradevault/internal/domain"
)

type beginListingRequest struct {
	OwnerID     int64  `json:"owner_id"`
	Username    string `json:"username"`
	AccountType string `json:"account_type"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func (s *Server) beginListing(c echo.Context) error {
	req := new(beginListingRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	p, err := s.listings.Begin(c.Request().Context(), req.OwnerID, req.Username, req.AccountType, req.Price, req.Description)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"owner_id":   p.OwnerID,
		"expires_at": p.ExpiresAt,
	})
}

type submitImagesRequest struct {
	OwnerID   int64    `json:"owner_id"`
	ImageURLs []string `json:"image_urls"`
}

func (s *Server) submitImages(c echo.Context) error {
	req := new(submitImagesRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	l, err := s.listings.SubmitImages(c.Request().Context(), req.OwnerID, req.ImageURLs)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"listing": l})
}

func (s *Server) getListing(c echo.Context) error {
	l, err := s.store.GetActiveListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"listing": l})
}

type editListingRequest struct {
	RequesterID int64                `json:"requester_id"`
	Fields      domain.ListingFields `json:"fields"`
}

func (s *Server) editListing(c echo.Context) error {
	req := new(editListingRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	l, err := s.listings.Edit(c.Request().Context(), c.Param("id"), req.RequesterID, req.Fields)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"listing": l})
}

type cancelListingRequest struct {
	RequesterID int64 `json:"requester_id"`
}

func (s *Server) cancelListing(c echo.Context) error {
	req := new(cancelListingRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := s.listings.Cancel(c.Request().Context(), c.Param("id"), req.RequesterID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "canceled"})
}
