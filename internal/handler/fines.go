package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okiim/libris/internal/model"
)

func (h *Handler) GetFines(c echo.Context) error {
	items, err := h.fineSvc.ListFines(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PayFine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.PayFineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.fineSvc.PayFine(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Fine payment processed successfully"})
}
