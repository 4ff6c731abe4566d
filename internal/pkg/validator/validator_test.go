package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Username: "alice", Email: "a@example.com"}))

	errs := Validate(sample{Username: "al", Email: "nope"})
	assert.Equal(t, "min", errs["Username"])
	assert.Equal(t, "email", errs["Email"])
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("bob@example.com"))
	assert.False(t, Email("bob"))
	assert.False(t, Email(""))
}
