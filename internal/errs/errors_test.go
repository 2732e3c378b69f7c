package errs

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindTransport, Op: "list", Status: 502, Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "list: transport (status=502): unexpected EOF", err.Error())

	assert.Equal(t, "login: Invalid email or password", ErrInvalidCredentials.Error())
}

func TestIsWalksChain(t *testing.T) {
	inner := Wrap(io.EOF, KindDecode, "upload")
	outer := &Error{Kind: KindTransport, Op: "submit", Err: inner}
	wrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, Is(wrapped, KindTransport))
	assert.True(t, Is(wrapped, KindDecode))
	assert.False(t, Is(wrapped, KindStale))
	assert.False(t, Is(io.EOF, KindDecode))
	assert.ErrorIs(t, wrapped, io.EOF)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, KindTransport, "list"))
}

func TestStatus(t *testing.T) {
	err := fmt.Errorf("x: %w", &Error{Kind: KindTransport, Status: 404})
	assert.Equal(t, 404, Status(err))
	assert.Equal(t, 0, Status(io.EOF))
}
