package marker

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDestinationPath(t *testing.T) {
	dir := "/cache"

	tests := []struct {
		filename string
		ext      string
		want     string
	}{
		{"out.jpg", TextExtension, "/cache/out.jpg"},
		{"out.png", TextExtension, "/cache/out.png"},
		{"out.JPEG", ImageExtension, "/cache/out.JPEG"},
		{"out", TextExtension, "/cache/out.jpg"},
		{"out", ImageExtension, "/cache/out.png"},
		{"out.webp", TextExtension, "/cache/out.webp.jpg"},
		{"../../etc/out.png", ImageExtension, "/cache/out.png"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), DestinationPath(dir, tt.filename, tt.ext))
		})
	}
}

func TestDestinationPath_Generated(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f-]{36}imagemarker\.png$`)

	a := DestinationPath("/cache", "", ImageExtension)
	b := DestinationPath("/cache", "  ", ImageExtension)

	assert.Regexp(t, re, filepath.Base(a))
	assert.Regexp(t, re, filepath.Base(b))
	assert.NotEqual(t, a, b)
	assert.Equal(t, filepath.FromSlash("/cache"), filepath.Dir(a))
}

func TestState_ForwardOnly(t *testing.T) {
	r := newRun("t", discardLogger())

	r.enter(StateAcquiring)
	r.enter(StateScaling)
	assert.Panics(t, func() { r.enter(StateAcquiring) })

	r.enter(StateComposing)
	r.enter(StateEncoding)
	r.done("/x")
	assert.Equal(t, []State{StateIdle, StateAcquiring, StateScaling, StateComposing, StateEncoding, StateDone}, r.trace)
	assert.Panics(t, func() { r.enter(StateFailed) })
}

func TestState_FailFromAnyLiveState(t *testing.T) {
	for _, s := range []State{StateIdle, StateAcquiring, StateScaling, StateComposing, StateEncoding} {
		r := newRun("t", discardLogger())
		if s != StateIdle {
			r.enter(s)
		}
		r.fail(assert.AnError)
		assert.Equal(t, StateFailed, r.state, s.String())
		assert.True(t, r.state.Terminal())
	}
}

func TestElementKind_String(t *testing.T) {
	assert.Equal(t, "image", ElementImage.String())
	assert.Equal(t, "text", ElementText.String())
	assert.Equal(t, "unknown", ElementKind(0).String())
}
