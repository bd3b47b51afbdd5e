package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"unauthorized", &httpError{status: 401}, KindUnauthorized},
		{"conflict", &httpError{status: 409, message: "exists"}, KindConflict},
		{"duplicate 400", &httpError{status: 400, message: "Username already exists"}, KindConflict},
		{"plain 400", &httpError{status: 400, message: "bad body"}, KindUnknown},
		{"server", &httpError{status: 503, message: "down"}, KindServer},
		{"transport", errors.New("timeout"), KindUnknown},
		{"wrapped", fmt.Errorf("patch lead: %w", &httpError{status: 401}), KindUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, ClassifyError(tc.err).Kind)
		})
	}
}

func TestClassifyErrorKeepsExistingAPIError(t *testing.T) {
	original := &APIError{Kind: KindConflict, Message: "taken"}
	assert.Same(t, original, ClassifyError(fmt.Errorf("wrap: %w", original)))
	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyErrorFillsStatusText(t *testing.T) {
	apiErr := ClassifyError(&httpError{status: 404})
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, 404, apiErr.Status)
}

func TestDomainErrorsAreDetectable(t *testing.T) {
	assert.True(t, IsDomainError(fmt.Errorf("x: %w", ErrNotConfirmed)))
	assert.False(t, IsDomainError(errors.New("plain")))
}
