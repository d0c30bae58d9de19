package booking

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drithh/setalip-mono-sub003/internal/credit"
)

type MockService struct {
	mock.Mock
	Service
}

func (m *MockService) Book(ctx context.Context, userID, agendaID int) (*Detail, error) {
	args := m.Called(ctx, userID, agendaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Detail), args.Error(1)
}

func (m *MockService) CancelByUser(ctx context.Context, userID, bookingID int) (*Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) CancelByAdmin(ctx context.Context, bookingID int, refund bool) (*Booking, error) {
	args := m.Called(ctx, bookingID, refund)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func newTestRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/agendas/:id/book", h.Book)
	r.POST("/bookings/:id/cancel", h.Cancel)
	r.POST("/admin/bookings/:id/cancel", h.AdminCancel)
	return r
}

func TestHandler_Book(t *testing.T) {
	svc := new(MockService)
	svc.On("Book", mock.Anything, 1, 7).Return(&Detail{Booking: Booking{ID: 30, Status: StatusBooked}}, nil)

	w := httptest.NewRecorder()
	newTestRouter(svc, 1).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agendas/7/book", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":30`)
}

func TestHandler_BookErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrClassFull, http.StatusConflict},
		{ErrAlreadyBooked, http.StatusConflict},
		{ErrAgendaNotFound, http.StatusNotFound},
		{credit.ErrInsufficientCredit, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := new(MockService)
			svc.On("Book", mock.Anything, 1, 7).Return(nil, tt.err)

			w := httptest.NewRecorder()
			newTestRouter(svc, 1).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agendas/7/book", nil))

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandler_CancelInsideWindow(t *testing.T) {
	svc := new(MockService)
	svc.On("CancelByUser", mock.Anything, 1, 30).Return(nil, ErrCancelWindowPassed)

	w := httptest.NewRecorder()
	newTestRouter(svc, 1).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings/30/cancel", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_AdminCancelPassesRefundFlag(t *testing.T) {
	svc := new(MockService)
	svc.On("CancelByAdmin", mock.Anything, 30, true).Return(&Booking{ID: 30, Status: StatusCancelled}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/bookings/30/cancel", bytes.NewBufferString(`{"refund":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter(svc, 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_AdminCancelTwice(t *testing.T) {
	svc := new(MockService)
	svc.On("CancelByAdmin", mock.Anything, 30, false).Return(nil, ErrAlreadyCancelled)

	req := httptest.NewRequest(http.MethodPost, "/admin/bookings/30/cancel", bytes.NewBufferString(`{"refund":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter(svc, 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
