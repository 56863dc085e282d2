package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCause(t *testing.T) {
	err := Wrap(KindFetchFailed, "source.fetch", io.ErrUnexpectedEOF, "can't request the image")

	assert.True(t, Is(err, KindFetchFailed))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "can't request the image: unexpected EOF", Message(err))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(KindIOError, "op", nil, "msg"))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(KindInvalidColor, "color", "bad %q", "#zz"), KindInvalidColor},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(KindLayoutError, "layout", "empty")), KindLayoutError},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Format(t *testing.T) {
	err := New(KindSourceUnavailable, "source.resolve", "can't get resource by the path: %s", "logo")
	assert.Equal(t, "[SourceUnavailable] source.resolve: can't get resource by the path: logo", err.Error())
	assert.Equal(t, "can't get resource by the path: logo", Message(err))
}
