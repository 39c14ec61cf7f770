package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppValidationError("top must be positive"),
			want: "[VALIDATION] top must be positive",
		},
		{
			name: "with cause",
			err:  NewIngestionError("read trace.csv", io.ErrUnexpectedEOF),
			want: "[INGESTION] read trace.csv: unexpected EOF",
		},
		{
			name: "not found",
			err:  NewNotFoundError("input file"),
			want: "[NOT_FOUND] input file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewStorageError("write export", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())

	wrapped := fmt.Errorf("analyze: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad header"}
	err.WithContext("source", "trace.csv").WithContext("line", 1)

	assert.Equal(t, "trace.csv", err.Context["source"])
	assert.Equal(t, 1, err.Context["line"])
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"ingestion", NewIngestionError("x", nil), ErrTypeIngestion},
		{"parsing", NewParsingError("x", nil), ErrTypeParsing},
		{"storage", NewStorageError("x", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("x"), ErrTypeValidation},
		{"not found", NewNotFoundError("x"), ErrTypeNotFound},
		{"config", NewConfigError("x", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("run: %w", NewIngestionError("empty input", nil))

	assert.True(t, IsType(err, ErrTypeIngestion))
	assert.False(t, IsType(err, ErrTypeConfig))
	assert.False(t, IsType(errors.New("plain"), ErrTypeIngestion))
	assert.False(t, IsType(nil, ErrTypeIngestion))
}
