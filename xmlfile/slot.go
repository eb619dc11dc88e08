package xmlfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/stream"
)

// ReservedSlot is a fixed-width span of blanks written ahead of a value that
// is not known yet.
type ReservedSlot struct {
	Pos   int64
	Width int
}

// pad returns text followed by blanks up to width.
func pad(text string, width int) string {
	if len(text) >= width {
		return text
	}

	return text + strings.Repeat(" ", width-len(text))
}

// reserve writes width blanks at the current position.
func (w *Writer) reserve(width int) (ReservedSlot, error) {
	if err := w.flush(); err != nil {
		return ReservedSlot{}, err
	}
	pos, err := stream.Position(w.seeker)
	if err != nil {
		return ReservedSlot{}, err
	}
	if err := w.text(strings.Repeat(" ", width)); err != nil {
		return ReservedSlot{}, err
	}

	return ReservedSlot{Pos: pos, Width: width}, nil
}

// commit writes text into slot and returns to the current position.
func (w *Writer) commit(slot ReservedSlot, text string) error {
	if len(text) > slot.Width {
		return fmt.Errorf("%w: %q does not fit a %d byte slot", errs.ErrMalformedDocument, text, slot.Width)
	}
	if err := w.flush(); err != nil {
		return err
	}

	end, err := stream.Position(w.seeker)
	if err != nil {
		return err
	}
	if err := stream.SeekTo(w.seeker, slot.Pos); err != nil {
		return err
	}
	if _, err := io.WriteString(w.seeker, pad(text, slot.Width)); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
	}

	return stream.SeekTo(w.seeker, end)
}
