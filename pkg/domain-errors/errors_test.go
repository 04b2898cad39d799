package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "backend fetch failed")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Contains(t, err.Error(), "backend fetch failed")
}

func TestHasCodeSeesThroughOuterWrapping(t *testing.T) {
	inner := New(CodeInvalidState, "not diagnosed")
	outer := errors.Join(errors.New("context"), inner)

	assert.True(t, HasCode(outer, CodeInvalidState))
	assert.Equal(t, CodeInvalidState, CodeOf(outer))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeInvalidState: http.StatusConflict,
		CodeUnavailable:  http.StatusBadGateway,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
