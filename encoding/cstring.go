package encoding

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arloliu/vtkxml/errs"
)

// CheckCStrings reports the first string of strs that holds a NUL byte, which
// the terminator encoding cannot represent.
func CheckCStrings(strs []string) error {
	for i, s := range strs {
		if j := strings.IndexByte(s, 0); j >= 0 {
			return fmt.Errorf("%w: string %d holds NUL at byte %d", errs.ErrInvalidArray, i, j)
		}
	}

	return nil
}

// CStringPacker writes strings as NUL-terminated byte sequences into
// successive buffers of any size.
//
// A string that does not fit the remaining space of a buffer is continued at
// the start of the next one.
type CStringPacker struct {
	strs    []string
	next    int // index of the string being written
	written int // bytes of strs[next] already written
}

// NewCStringPacker creates a packer over strs. The slice is not modified.
func NewCStringPacker(strs []string) *CStringPacker {
	return &CStringPacker{strs: strs}
}

// Fill writes as many bytes as fit into dst.
//
// Returns:
//   - int: bytes written, less than len(dst) only when all strings are packed
func (p *CStringPacker) Fill(dst []byte) int {
	n := 0
	for n < len(dst) && p.next < len(p.strs) {
		s := p.strs[p.next]
		c := copy(dst[n:], s[p.written:])
		n += c
		p.written += c
		if p.written < len(s) {
			break
		}
		if n == len(dst) {
			// the terminator goes to the next buffer
			break
		}
		dst[n] = 0
		n++
		p.next++
		p.written = 0
	}

	return n
}

// Pending returns the number of bytes of the current string already written
// without its terminator.
func (p *CStringPacker) Pending() int {
	return p.written
}

// Done reports whether every string and terminator has been written.
func (p *CStringPacker) Done() bool {
	return p.next >= len(p.strs)
}

// CStringUnpacker splits NUL-terminated byte runs fed in arbitrary pieces.
//
// Strings before skip are counted but not kept. Unpacking stops once skip+count
// strings have been seen.
type CStringUnpacker struct {
	skip    int
	count   int
	seen    int
	out     []string
	partial []byte
}

// NewCStringUnpacker creates an unpacker that keeps count strings after
// skipping the first skip. A negative count keeps every remaining string.
func NewCStringUnpacker(skip, count int) *CStringUnpacker {
	u := &CStringUnpacker{skip: skip, count: count}
	if count > 0 {
		u.out = make([]string, 0, count)
	}

	return u
}

// Feed consumes p and reports whether the requested strings are complete.
func (u *CStringUnpacker) Feed(p []byte) bool {
	for len(p) > 0 && !u.Done() {
		end := bytes.IndexByte(p, 0)
		if end < 0 {
			if u.seen >= u.skip {
				u.partial = append(u.partial, p...)
			} else {
				// keep the carry empty for skipped strings, only the NUL matters
				u.partial = u.partial[:0]
			}

			return false
		}

		if u.seen >= u.skip {
			if len(u.partial) > 0 {
				u.partial = append(u.partial, p[:end]...)
				u.out = append(u.out, string(u.partial))
				u.partial = u.partial[:0]
			} else {
				u.out = append(u.out, string(p[:end]))
			}
		}
		u.seen++
		p = p[end+1:]
	}

	return u.Done()
}

// Done reports whether the requested strings are complete.
func (u *CStringUnpacker) Done() bool {
	return u.count >= 0 && u.seen >= u.skip+u.count
}

// Pending returns the number of bytes of an unterminated string carried over.
func (u *CStringUnpacker) Pending() int {
	return len(u.partial)
}

// Seen returns the number of terminated strings consumed, skipped ones included.
func (u *CStringUnpacker) Seen() int {
	return u.seen
}

// Strings returns the kept strings.
func (u *CStringUnpacker) Strings() []string {
	if u.out == nil {
		return []string{}
	}

	return u.out
}
