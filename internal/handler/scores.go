package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightdeals/internal/airports"
	"github.com/dharmasatrya/flightdeals/internal/dealscore"
	"github.com/dharmasatrya/flightdeals/internal/models"
)

type dealScoresRequest struct {
	Flights *[]dealscore.Flight `json:"flights"`
}

type dealScoresResponse struct {
	Scores map[string]dealscore.Score `json:"scores"`
}

// CalculateDealScores rates each flight against recent price history.
func (h *Handler) CalculateDealScores(c echo.Context) error {
	var req dealScoresRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if req.Flights == nil {
		return validationError(c, models.ErrMissingFlights)
	}

	scores := h.scores.ScoreAll(c.Request().Context(), *req.Flights)
	return c.JSON(http.StatusOK, dealScoresResponse{Scores: scores})
}

type airportsResponse struct {
	Origin       airports.Origin    `json:"origin"`
	Destinations []airports.Airport `json:"destinations"`
}

func (h *Handler) ListAirports(c echo.Context) error {
	return c.JSON(http.StatusOK, airportsResponse{
		Origin:       h.dir.Origin(),
		Destinations: h.dir.Destinations(),
	})
}
