package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okiim/libris/internal/model"
)

func (h *Handler) GetBorrowings(c echo.Context) error {
	items, err := h.circulationSvc.ListBorrowings(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateBorrowing(c echo.Context) error {
	var req model.BorrowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookTitle == "" || req.MemberName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book and member are required")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.circulationSvc.CreateBorrowing(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Successfully created borrowing", ID: id})
}

func (h *Handler) UpdateBorrowing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.BorrowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookTitle == "" || req.MemberName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book and member are required")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.circulationSvc.UpdateBorrowing(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Successfully updated borrowing"})
}

func (h *Handler) DeleteBorrowing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.circulationSvc.DeleteBorrowing(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Borrowing deleted successfully"})
}

func (h *Handler) ReturnBorrowing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.circulationSvc.ReturnBorrowing(c.Request().Context(), id, req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetOverdueBorrowings(c echo.Context) error {
	items, err := h.circulationSvc.ListOverdue(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateOverdue(c echo.Context) error {
	count, err := h.circulationSvc.MarkOverdue(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	type resp struct {
		Msg          string `json:"msg"`
		UpdatedCount int    `json:"updated_count"`
	}
	return c.JSON(http.StatusOK, resp{
		Msg:          fmt.Sprintf("Updated %d borrowings to overdue status", count),
		UpdatedCount: count,
	})
}
