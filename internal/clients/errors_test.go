package clients

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, IsTransient(Transient(base)))
	assert.False(t, IsPermanent(Transient(base)))

	assert.True(t, IsPermanent(Permanent(base)))
	assert.False(t, IsTransient(Permanent(base)))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsPermanent(nil))
	assert.Nil(t, Transient(nil))
	assert.Nil(t, Permanent(nil))
}

func TestErrorClassificationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("fetching page: %w", Transient(errors.New("reset")))
	assert.True(t, IsTransient(err))

	err = fmt.Errorf("parsing page: %w", Permanent(errors.New("gone")))
	assert.True(t, IsPermanent(err))
}

func TestDeadlineCountsAsTransient(t *testing.T) {
	err := fmt.Errorf("request: %w", context.DeadlineExceeded)
	assert.True(t, IsTransient(err))
}
