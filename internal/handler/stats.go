package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetDashboard(c echo.Context) error {
	stats, err := h.statsSvc.Dashboard(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetPopularBooks(c echo.Context) error {
	items, err := h.statsSvc.PopularBooks(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMemberActivity(c echo.Context) error {
	items, err := h.statsSvc.MemberActivity(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
