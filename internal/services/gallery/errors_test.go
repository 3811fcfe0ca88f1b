package gallery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailAt(t *testing.T) {
	cause := errors.New("disk full")

	err := failAt(StageStored, "a.png", false, ErrStorage, cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upload failed at stored (a.png): storage error: disk full", err.Error())

	wrapped := failAt(StageInspected, "b.png", true, ErrUnsupportedFormat, ErrUnsupportedFormat)
	assert.Equal(t, ErrUnsupportedFormat, wrapped.Err)

	bare := failAt(StageReceived, "", false, ErrValidation, nil)
	assert.Equal(t, "upload failed at received: validation error", bare.Error())
}
