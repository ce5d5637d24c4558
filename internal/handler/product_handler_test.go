package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cashier/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("2.50"), Stock: 10},
		{ID: 2, Name: "Muffin", Price: decimal.RequireFromString("3.20"), Stock: 4},
	}

	tests := []struct {
		name           string
		queryParams    string
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success without pagination",
			queryParams:    "",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success with pagination",
			queryParams:    "?limit=5&offset=10",
			expectedLimit:  5,
			expectedOffset: 10,
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid limit parameter",
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid offset parameter",
			queryParams:    "?offset=invalid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Storage failure",
			mockError:      &model.StorageError{Op: "query products", Err: context.DeadlineExceeded},
			expectedStatus: http.StatusServiceUnavailable,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetAll", mock.Anything, tt.expectedLimit, tt.expectedOffset).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.GetAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
				assert.Len(t, products, len(tt.mockReturn))
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Found", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)
		mockService.On("GetByID", mock.Anything, int64(1)).
			Return(&model.Product{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("2.50")}, nil)

		w := httptest.NewRecorder()
		handler.GetByID(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/1", nil), "id", "1"))

		require.Equal(t, http.StatusOK, w.Code)
		var product model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
		assert.Equal(t, "Espresso", product.Name)
		assert.True(t, decimal.RequireFromString("2.50").Equal(product.Price))
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)
		mockService.On("GetByID", mock.Anything, int64(9)).Return(nil, &model.ProductNotFoundError{ProductID: 9})

		w := httptest.NewRecorder()
		handler.GetByID(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/9", nil), "id", "9"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, w).Error)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		w := httptest.NewRecorder()
		handler.GetByID(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/x", nil), "id", "x"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)
		mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.ProductRequest) bool {
			return req.Name == "Latte" && req.Stock != nil && *req.Stock == 8
		})).Return(&model.Product{ID: 3, Name: "Latte", Stock: 8}, nil)

		body := `{"name": "Latte", "price": "3.10", "description": "Single shot", "stock": 8}`
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Validation error", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)
		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewValidationError("stock", "is required"))

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name": "Latte"}`)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodeValidation, resp.Error)
		assert.Equal(t, "stock", resp.Field)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockService := new(MockProductService)
		handler := NewProductHandler(mockService, logger)

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"price": "abc"`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
	})
}

func TestProductHandler_Update(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, zerolog.Nop())
	mockService.On("Update", mock.Anything, int64(3), mock.AnythingOfType("*model.ProductRequest")).
		Return(&model.Product{ID: 3, Name: "Mocha"}, nil)
	mockService.On("Update", mock.Anything, int64(4), mock.AnythingOfType("*model.ProductRequest")).
		Return(nil, &model.ProductNotFoundError{ProductID: 4})

	body := `{"name": "Mocha", "price": "3.60", "description": "Chocolate", "stock": 2}`

	w := httptest.NewRecorder()
	handler.Update(w, withURLParam(httptest.NewRequest(http.MethodPut, "/api/products/3", strings.NewReader(body)), "id", "3"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.Update(w, withURLParam(httptest.NewRequest(http.MethodPut, "/api/products/4", strings.NewReader(body)), "id", "4"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}

func TestProductHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Deleted", expectedStatus: http.StatusNoContent},
		{name: "Not found", mockError: &model.ProductNotFoundError{ProductID: 3}, expectedStatus: http.StatusNotFound},
		{name: "Referenced by orders", mockError: model.ErrProductInUse, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, zerolog.Nop())
			mockService.On("Delete", mock.Anything, int64(3)).Return(tt.mockError)

			w := httptest.NewRecorder()
			handler.Delete(w, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/products/3", nil), "id", "3"))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
