package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/handler"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/pkg/validate"

	service_mocks "github.com/okiim/libris/internal/handler/mocks"
)

type serviceMocks struct {
	catalog     *service_mocks.MockCatalogService
	membership  *service_mocks.MockMembershipService
	circulation *service_mocks.MockCirculationService
	fines       *service_mocks.MockFineService
	stats       *service_mocks.MockStatsService
}

func newTestHandler(t *testing.T) (*handler.Handler, serviceMocks, *echo.Echo) {
	t.Helper()
	c := gomock.NewController(t)
	m := serviceMocks{
		catalog:     service_mocks.NewMockCatalogService(c),
		membership:  service_mocks.NewMockMembershipService(c),
		circulation: service_mocks.NewMockCirculationService(c),
		fines:       service_mocks.NewMockFineService(c),
		stats:       service_mocks.NewMockStatsService(c),
	}
	log := zap.NewExample().Named("test")
	h := handler.New(m.catalog, m.membership, m.circulation, m.fines, m.stats, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return h, m, e
}

func TestHandler_CreateBorrowing(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m serviceMocks)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"book_title":"Dune","member_name":"Paul"}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					CreateBorrowing(context.Background(), model.BorrowingRequest{
						BookTitle:  "Dune",
						MemberName: "Paul",
					}).
					Return(7, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Successfully created borrowing","id":7}`,
			},
		},
		{
			name:         "err. member required",
			body:         `{"book_title":"Dune"}`,
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"book and member are required"}`,
			},
		},
		{
			name: "err. book not available",
			body: `{"book_title":"Dune","member_name":"Paul"}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					CreateBorrowing(context.Background(), gomock.Any()).
					Return(0, errors.Wrap(errs.ErrConflict, "book is not available"))
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is not available: conflict"}`,
			},
		},
		{
			name: "err. book or member unknown",
			body: `{"book_title":"Missing","member_name":"Paul"}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					CreateBorrowing(context.Background(), gomock.Any()).
					Return(0, errors.Wrap(errs.ErrNotFound, "book or member"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book or member: not found"}`,
			},
		},
		{
			name: "err. internal stays generic",
			body: `{"book_title":"Dune","member_name":"Paul"}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					CreateBorrowing(context.Background(), gomock.Any()).
					Return(0, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"internal error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.POST("/api/v1/borrowings", h.CreateBorrowing)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/borrowings", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnBorrowing(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m serviceMocks)

	var tests = []struct {
		name         string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok. five days late",
			target: "/api/v1/borrowings/4/return",
			body:   `{}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					ReturnBorrowing(context.Background(), 4, model.ReturnRequest{}).
					Return(model.ReturnResult{
						Msg:         "Book returned successfully",
						FineAmount:  5,
						DaysOverdue: 5,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Book returned successfully","fine_amount":5,"days_overdue":5}`,
			},
		},
		{
			name:   "err. not active",
			target: "/api/v1/borrowings/4/return",
			body:   `{}`,
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().
					ReturnBorrowing(context.Background(), 4, model.ReturnRequest{}).
					Return(model.ReturnResult{}, errors.Wrap(errs.ErrNotFound, "active borrowing"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"active borrowing: not found"}`,
			},
		},
		{
			name:         "err. bad id",
			target:       "/api/v1/borrowings/abc/return",
			body:         `{}`,
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.POST("/api/v1/borrowings/:id/return", h.ReturnBorrowing)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateOverdue(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		mockBehavior func(m serviceMocks)
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().MarkOverdue(context.Background()).Return(3, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Updated 3 borrowings to overdue status","updated_count":3}`,
			},
		},
		{
			name: "ok. nothing due",
			mockBehavior: func(m serviceMocks) {
				m.circulation.EXPECT().MarkOverdue(context.Background()).Return(0, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Updated 0 borrowings to overdue status","updated_count":0}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.POST("/api/v1/borrowings/update-overdue", h.UpdateOverdue)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/borrowings/update-overdue", http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_PayFine(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		target       string
		body         string
		mockBehavior func(m serviceMocks)
		response     response
	}{
		{
			name:   "ok",
			target: "/api/v1/fines/2/pay",
			body:   `{"paid_amount":5}`,
			mockBehavior: func(m serviceMocks) {
				m.fines.EXPECT().
					PayFine(context.Background(), 2, model.PayFineRequest{PaidAmount: 5}).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Fine payment processed successfully"}`,
			},
		},
		{
			name:   "err. unknown fine",
			target: "/api/v1/fines/2/pay",
			body:   `{"paid_amount":5}`,
			mockBehavior: func(m serviceMocks) {
				m.fines.EXPECT().
					PayFine(context.Background(), 2, model.PayFineRequest{PaidAmount: 5}).
					Return(errors.Wrap(errs.ErrNotFound, "fine"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"fine: not found"}`,
			},
		},
		{
			name:         "err. negative amount",
			target:       "/api/v1/fines/2/pay",
			body:         `{"paid_amount":-1}`,
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name:         "err. bad id",
			target:       "/api/v1/fines/abc/pay",
			body:         `{"paid_amount":5}`,
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.POST("/api/v1/fines/:id/pay", h.PayFine)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_CreateMember(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		body         string
		mockBehavior func(m serviceMocks)
		response     response
	}{
		{
			name: "ok",
			body: `{"name":"Ada","email":"ada@example.com","member_type":"Faculty"}`,
			mockBehavior: func(m serviceMocks) {
				m.membership.EXPECT().
					CreateMember(context.Background(), model.MemberRequest{
						Name:       "Ada",
						Email:      "ada@example.com",
						MemberType: model.MemberTypeFaculty,
					}).
					Return(model.Member{ID: 1, MemberCode: "FAC001", Name: "Ada"}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"msg":"Successfully added member: Ada","id":1,"member_code":"FAC001"}`,
			},
		},
		{
			name:         "err. email required",
			body:         `{"name":"Ada"}`,
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"name and email are required"}`,
			},
		},
		{
			name: "err. duplicate email",
			body: `{"name":"Ada","email":"ada@example.com"}`,
			mockBehavior: func(m serviceMocks) {
				m.membership.EXPECT().
					CreateMember(context.Background(), gomock.Any()).
					Return(model.Member{}, errors.Wrap(errs.ErrConflict, "member email already exists"))
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"member email already exists: conflict"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.POST("/api/v1/members", h.CreateMember)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/members", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}

	var tests = []struct {
		name         string
		target       string
		mockBehavior func(m serviceMocks)
		response     response
	}{
		{
			name:   "ok. no matches",
			target: "/api/v1/search/books?q=dune",
			mockBehavior: func(m serviceMocks) {
				m.catalog.EXPECT().
					SearchBooks(context.Background(), "dune").
					Return([]model.Book{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
		{
			name:         "err. query required",
			target:       "/api/v1/search/books?q=%20",
			mockBehavior: func(m serviceMocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"search query is required"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m, e := newTestHandler(t)
			e.GET("/api/v1/search/books", h.SearchBooks)
			tt.mockBehavior(m)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
