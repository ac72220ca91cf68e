package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeMeta(t *testing.T) {
	tests := []struct {
		code       Code
		status     int
		retryable  bool
		details    bool
		serverSide bool
	}{
		{CodeValidation, http.StatusBadRequest, false, true, false},
		{CodeUnauthorized, http.StatusUnauthorized, false, false, false},
		{CodeForbidden, http.StatusForbidden, false, false, false},
		{CodeNotFound, http.StatusNotFound, false, false, false},
		{CodeConflict, http.StatusConflict, false, false, false},
		{CodeStateConflict, http.StatusUnprocessableEntity, false, true, false},
		{CodeIdempotency, http.StatusConflict, false, true, false},
		{CodeRateLimit, http.StatusTooManyRequests, false, false, false},
		{CodeInternal, http.StatusInternalServerError, true, false, true},
		{CodeDependency, http.StatusServiceUnavailable, true, true, true},
		{CodeBuyerRequired, http.StatusUnprocessableEntity, false, false, false},
		{CodeEmptyOrder, http.StatusUnprocessableEntity, false, false, false},
		{CodeInsufficientStock, http.StatusConflict, false, true, false},
		{CodeConcurrency, http.StatusConflict, true, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := tt.code.Meta()
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.details, meta.DetailsAllowed)
			assert.Equal(t, tt.serverSide, meta.ServerSide())
			assert.NotEmpty(t, meta.PublicMessage)
			assert.Equal(t, meta, MetadataFor(tt.code))
		})
	}
}

func TestUnknownCodeIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal.Meta(), Code("SOMETHING_UNKNOWN").Meta())
}

func TestWithDetailsDoesNotMutateReceiver(t *testing.T) {
	base := New(CodeValidation, "missing quantity")
	detailed := base.WithDetails(map[string]string{"field": "quantity"})

	assert.Nil(t, base.Details())
	assert.Equal(t, map[string]string{"field": "quantity"}, detailed.Details())
	assert.Equal(t, base.Code(), detailed.Code())
	assert.Equal(t, "VALIDATION_ERROR: missing quantity", detailed.Error())
}

func TestWrapAndAs(t *testing.T) {
	cause := stdErrors.New("connection reset")
	wrapped := fmt.Errorf("load variant: %w", Wrap(CodeDependency, cause, "inventory read"))

	assert.ErrorIs(t, wrapped, cause)
	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeDependency, typed.Code())
	assert.True(t, IsCode(wrapped, CodeDependency))
	assert.False(t, IsCode(wrapped, CodeInternal))

	assert.Nil(t, As(nil))
	assert.Nil(t, As(cause))
	assert.Nil(t, Wrap(CodeInternal, nil, "no cause").Unwrap())
}

func TestNilErrorAccessors(t *testing.T) {
	var e *Error
	assert.Equal(t, CodeInternal, e.Code())
	assert.Empty(t, e.Message())
	assert.Nil(t, e.Details())
	assert.Nil(t, e.WithDetails("x"))
	assert.Empty(t, e.Error())
}

func TestInsufficientStock(t *testing.T) {
	variantID := uuid.New()
	details, ok := Shortfall(fmt.Errorf("place order: %w", InsufficientStock(variantID, 3, 2)))
	require.True(t, ok)
	assert.Equal(t, StockShortfall{VariantID: variantID, Requested: 3, Available: 2, Shortfall: 1}, details)

	over, _ := Shortfall(InsufficientStock(variantID, 1, 4))
	assert.Zero(t, over.Shortfall)

	_, ok = Shortfall(New(CodeValidation, "nope"))
	assert.False(t, ok)
}

func TestConcurrencyKeepsCause(t *testing.T) {
	cause := stdErrors.New("deadlock detected")
	err := Concurrency(cause, "40P01")

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeConcurrency))
	assert.Equal(t, map[string]any{"pg_code": "40P01"}, err.Details())
	assert.Nil(t, Concurrency(cause, "").Details())
}
