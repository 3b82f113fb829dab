package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	md "github.com/okiim/libris/pkg/middleware"
	"github.com/okiim/libris/pkg/validate"

	"github.com/okiim/libris/internal/errs"
)

type Handler struct {
	catalogSvc     CatalogService
	membershipSvc  MembershipService
	circulationSvc CirculationService
	fineSvc        FineService
	statsSvc       StatsService
	log            *zap.Logger
}

func New(
	catalogSvc CatalogService,
	membershipSvc MembershipService,
	circulationSvc CirculationService,
	fineSvc FineService,
	statsSvc StatsService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		catalogSvc:     catalogSvc,
		membershipSvc:  membershipSvc,
		circulationSvc: circulationSvc,
		fineSvc:        fineSvc,
		statsSvc:       statsSvc,
		log:            log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log.Named("echo"))),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/categories", h.GetCategories)
	api.POST("/categories", h.CreateCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/books", h.GetBooks)
	api.POST("/books", h.CreateBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/members", h.GetMembers)
	api.POST("/members", h.CreateMember)
	api.PUT("/members/:id", h.UpdateMember)
	api.DELETE("/members/:id", h.DeleteMember)

	api.GET("/borrowings", h.GetBorrowings)
	api.POST("/borrowings", h.CreateBorrowing)
	api.PUT("/borrowings/:id", h.UpdateBorrowing)
	api.DELETE("/borrowings/:id", h.DeleteBorrowing)
	api.GET("/borrowings/overdue", h.GetOverdueBorrowings)
	api.POST("/borrowings/:id/return", h.ReturnBorrowing)
	api.POST("/borrowings/update-overdue", h.UpdateOverdue)

	api.GET("/fines", h.GetFines)
	api.POST("/fines/:id/pay", h.PayFine)

	api.GET("/statistics/dashboard", h.GetDashboard)
	api.GET("/reports/popular-books", h.GetPopularBooks)
	api.GET("/reports/member-activity", h.GetMemberActivity)

	api.GET("/search/books", h.SearchBooks)
	api.GET("/search/members", h.SearchMembers)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.statsSvc.Ping(c.Request().Context()); err != nil {
		h.log.Error("health", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "database connection failed")
	}
	return c.String(http.StatusOK, "OK")
}

// httpError maps the error taxonomy onto status codes. Internal failures are
// logged in full and surfaced generically.
func (h *Handler) httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.log.Error("internal", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}
