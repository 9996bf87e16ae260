package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewUserError("could not open the budget database", cause)

	assert.Equal(t, "could not open the budget database: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "could not open the budget database", userErr.UserMessage)
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("nothing imported yet", nil)
	assert.Equal(t, "nothing imported yet", err.Error())
}
