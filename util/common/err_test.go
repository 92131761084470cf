package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine())
	assert.NoError(t, Combine(nil, nil))

	err := Combine(nil, errors.New("first"), nil, errors.New("second"))
	assert.EqualError(t, err, "first, second")
}

func TestRecoverSwallowsPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover("background task")
		panic("boom")
	})
}

func TestRecoverWithoutPanic(t *testing.T) {
	assert.Nil(t, Recover(""))
}
