package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okiim/libris/internal/model"
)

func (h *Handler) GetCategories(c echo.Context) error {
	items, err := h.catalogSvc.ListCategories(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req model.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := h.catalogSvc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg: fmt.Sprintf("Successfully created category: %s", strings.TrimSpace(req.Name)),
		ID:  id,
	})
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if err := h.catalogSvc.UpdateCategory(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg: fmt.Sprintf("Successfully updated category: %s", strings.TrimSpace(req.Name)),
	})
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteCategory(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Category deleted successfully"})
}

func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.catalogSvc.ListBooks(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) SearchBooks(c echo.Context) error {
	term := c.QueryParam("q")
	if strings.TrimSpace(term) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")
	}
	books, err := h.catalogSvc.SearchBooks(c.Request().Context(), term)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	id, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg: fmt.Sprintf("Successfully created book: %s", strings.TrimSpace(req.Title)),
		ID:  id,
	})
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg: fmt.Sprintf("Successfully updated book: %s", strings.TrimSpace(req.Title)),
	})
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Book deleted successfully"})
}
