package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error includes the wrapped cause", func(t *testing.T) {
		cause := errors.New("mailbox service not authenticated")
		err := Unavailable(cause)

		assert.Equal(t, http.StatusServiceUnavailable, err.Code)
		assert.Equal(t, "Service temporarily unavailable: mailbox service not authenticated", err.Error())
	})

	t.Run("Error without a cause is just the message", func(t *testing.T) {
		err := NotFound("Candidate not found")
		assert.Equal(t, "Candidate not found", err.Error())
	})

	t.Run("Unwrap exposes the cause to errors.Is", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := Internal(cause)
		assert.True(t, errors.Is(err, cause))
	})
}
