package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okiim/libris/internal/model"
)

func (h *Handler) GetMembers(c echo.Context) error {
	members, err := h.membershipSvc.ListMembers(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) SearchMembers(c echo.Context) error {
	term := c.QueryParam("q")
	if strings.TrimSpace(term) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")
	}
	members, err := h.membershipSvc.SearchMembers(c.Request().Context(), term)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var req model.MemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	member, err := h.membershipSvc.CreateMember(c.Request().Context(), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg:        fmt.Sprintf("Successfully added member: %s", member.Name),
		ID:         member.ID,
		MemberCode: member.MemberCode,
	})
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.MemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.membershipSvc.UpdateMember(c.Request().Context(), id, req); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{
		Msg: fmt.Sprintf("Successfully updated member: %s", strings.TrimSpace(req.Name)),
	})
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.membershipSvc.DeleteMember(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.Ack{Msg: "Member deleted successfully"})
}
