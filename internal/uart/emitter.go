package uart

import (
	"fmt"
	"io"

	"github.com/sweeney/lamp-controller/internal/logic"
)

// PrefixStatus prefixes outbound lamp status lines.
const PrefixStatus = "PUB:"

// FormatStatusLine returns the newline-terminated status line for s.
func FormatStatusLine(s logic.LampStatus) []byte {
	return []byte(PrefixStatus + string(s) + "\n")
}

// Emitter sends lamp status lines to the peer.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the status line. The link is fire-and-forget; a failed
// write is reported but not retried.
func (e *Emitter) Emit(s logic.LampStatus) error {
	if _, err := e.w.Write(FormatStatusLine(s)); err != nil {
		return fmt.Errorf("emit status %s: %w", s, err)
	}
	return nil
}
