package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ecobazaarx/internal/market"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&market.ValidationError{Field: "price", Message: "must be greater than or equal to 0"}, http.StatusBadRequest},
		{market.ErrInvalidCredentials, http.StatusUnauthorized},
		{market.ErrNotAuthenticated, http.StatusUnauthorized},
		{market.ErrUserBlocked, http.StatusForbidden},
		{ErrForbidden, http.StatusForbidden},
		{&market.OpError{Op: "market.UpdateProduct", ID: 3, Err: market.ErrProductNotFound}, http.StatusNotFound},
		{&market.OpError{Op: "market.UpdateUser", ID: 3, Err: market.ErrUserNotFound}, http.StatusNotFound},
		{market.ErrDuplicateEmail, http.StatusConflict},
		{market.ErrEmptyCart, http.StatusConflict},
		{&market.OpError{Op: "market.Moderate", ID: 1, Err: market.ErrInvalidTransition}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, 10},
		{"?page=3&page_size=25", 3, 25},
		{"?page=0&page_size=500", 1, 10},
		{"?page=abc&page_size=-1", 1, 10},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/products"+tt.query, nil)

		page, size := getPaginationParams(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.size, size, tt.query)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Equal(t, []int{}, paginate(items, 4, 2))

	assert.Equal(t, 1, totalPages(0, 10))
	assert.Equal(t, 3, totalPages(5, 2))
}
