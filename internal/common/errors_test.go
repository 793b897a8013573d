package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("decode failed"),
			message:         "load page-1.png",
			expectedMessage: "load page-1.png: decode failed",
		},
		{
			name:            "empty wrapper message",
			originalError:   errors.New("decode failed"),
			message:         "",
			expectedMessage: ": decode failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			require.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
			assert.ErrorIs(t, wrappedError, tt.originalError)
		})
	}

	assert.NoError(t, WrapError(nil, "ignored"))
}

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrImageLoad, "page %d of %s", 3, "old")
	assert.Equal(t, "page 3 of old: image load failed", err.Error())
	assert.ErrorIs(t, err, ErrImageLoad)
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := WrapError(NewValidationError("task_id", "", "must not be empty"), "poll")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "task_id")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "task_id", vErr.Field)
}

func TestHTTPError(t *testing.T) {
	err := NewHTTPErrorWithURL(http.StatusBadGateway, "upstream down", "http://api/task/1")
	assert.Equal(t, "HTTP 502 error for 'http://api/task/1': upstream down", err.Error())

	bare := &HTTPError{StatusCode: http.StatusNotFound, Message: "missing"}
	assert.Equal(t, "HTTP 404 error: missing", bare.Error())
}

func TestNetworkError_Unwrap(t *testing.T) {
	root := errors.New("connection reset")
	err := NewNetworkError("http://api", "request failed", root)
	assert.ErrorIs(t, err, root)
	assert.ErrorIs(t, WrapError(err, "poll"), root)
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors(nil))
	assert.NoError(t, CombineErrors([]error{nil, nil}))

	single := errors.New("one")
	assert.Equal(t, single, CombineErrors([]error{nil, single}))

	combined := CombineErrors([]error{errors.New("a"), errors.New("b")})
	assert.Equal(t, "multiple errors occurred: [a; b]", combined.Error())

	invalid := CombineErrors([]error{errors.New("a"), NewValidationError("page", 0, "bad")})
	assert.ErrorIs(t, invalid, ErrInvalidInput)
}

func TestErrorCollector(t *testing.T) {
	var ec ErrorCollector
	assert.False(t, ec.HasErrors())

	ec.Add(nil)
	ec.AddWithContext(errors.New("timeout"), "page 2")
	ec.Add(errors.New("decode"))

	assert.True(t, ec.HasErrors())
	assert.Len(t, ec.Errors(), 2)
	assert.Contains(t, ec.Error().Error(), "page 2: timeout")
}
