package stream

import "io"

// Seekable reports whether w supports random access, probing it with a
// zero-length relative seek. Writers such as pipes and sockets implement
// io.Seeker on some platforms but fail the probe.
func Seekable(w io.Writer) (io.WriteSeeker, bool) {
	ws, ok := w.(io.WriteSeeker)
	if !ok {
		return nil, false
	}
	if _, err := ws.Seek(0, io.SeekCurrent); err != nil {
		return nil, false
	}

	return ws, true
}

// Position returns the current position of s.
func Position(s io.Seeker) (int64, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, seekError(err)
	}

	return pos, nil
}
