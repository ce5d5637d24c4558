package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	before := testutil.ToFloat64(checkoutTotal.WithLabelValues(OutcomeInsufficientStock))

	ObserveCheckout(OutcomeInsufficientStock, 15*time.Millisecond)

	after := testutil.ToFloat64(checkoutTotal.WithLabelValues(OutcomeInsufficientStock))
	assert.Equal(t, before+1, after)
}

func TestIncCheckoutRetries(t *testing.T) {
	before := testutil.ToFloat64(checkoutRetries)

	IncCheckoutRetries()
	IncCheckoutRetries()

	assert.Equal(t, before+2, testutil.ToFloat64(checkoutRetries))
}

func TestObserveHTTP(t *testing.T) {
	counter := httpRequests.WithLabelValues(http.MethodPost, "/api/orders", "201")
	before := testutil.ToFloat64(counter)

	ObserveHTTP(http.MethodPost, "/api/orders", http.StatusCreated, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveCheckout(OutcomeCommitted, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "checkout_total")
	assert.Contains(t, rec.Body.String(), "checkout_duration_seconds")
}
