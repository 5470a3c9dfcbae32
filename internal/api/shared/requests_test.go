package shared

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Key string `validate:"required,max=8"`
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(taggedRequest{Key: "a.b"}))

	err := ValidateRequest(taggedRequest{})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)

	assert.Error(t, ValidateRequest(taggedRequest{Key: "much.too.long"}))

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
}
