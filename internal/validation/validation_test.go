package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-ordering/internal/apperror"
)

type orderInput struct {
	Quantity   int   `json:"quantity" validate:"gt=0"`
	TotalPrice int64 `json:"total_price" validate:"gt=0"`
}

func TestValidateReportsEveryField(t *testing.T) {
	err := New().Validate(&orderInput{})
	require.Error(t, err)

	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	require.Len(t, ae.Fields, 2)
	assert.Equal(t, "quantity", ae.Fields[0].Path)
	assert.Equal(t, "total_price", ae.Fields[1].Path)
	assert.Equal(t, "quantity must be greater than 0", ae.Fields[0].Message)
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, New().Validate(&orderInput{Quantity: 1, TotalPrice: 10}))
}
