// Package clipboard delivers the assembled dump to the system clipboard.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// maxCopyBytes guards against flooding the clipboard transport; dumps above
// this size are not copied automatically.
const maxCopyBytes = 1_500_000

// ErrTooLarge reports a dump exceeding the automatic-copy size guard.
var ErrTooLarge = fmt.Errorf("content exceeds the %d byte clipboard limit", maxCopyBytes)

// Copier copies textual data to the user's clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard, falling back
// to an OSC 52 escape sequence when no local clipboard utility is available,
// which covers SSH sessions into display-less hosts.
type Service struct {
	// EscapeWriter receives the OSC 52 fallback sequence; defaults to stdout.
	EscapeWriter io.Writer
}

// NewService constructs a clipboard service writing fallbacks to stdout.
func NewService() *Service {
	return &Service{EscapeWriter: os.Stdout}
}

// Copy writes text to the system clipboard, enforcing the size guard.
func (service *Service) Copy(text string) error {
	if len(text) > maxCopyBytes {
		return ErrTooLarge
	}
	if copyError := clipboard.WriteAll(text); copyError != nil {
		return service.copyViaEscapeSequence(text)
	}
	return nil
}

// copyViaEscapeSequence emits an OSC 52 sequence, letting a supporting
// terminal emulator place the payload on the local clipboard.
func (service *Service) copyViaEscapeSequence(text string) error {
	encodedPayload := base64.StdEncoding.EncodeToString([]byte(text))
	_, writeError := fmt.Fprintf(service.EscapeWriter, "\x1b]52;c;%s\a", encodedPayload)
	return writeError
}

var _ Copier = (*Service)(nil)
