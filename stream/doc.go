// Package stream provides the transports that carry binary array payloads.
//
// An OutputStream wraps the document's io.Writer and emits payload units
// either verbatim (raw) or as RFC 4648 standard base64 without line breaks.
// A unit is the span between StartWriting and EndWriting: base64 state is
// carried across Write calls inside a unit and the final partial group is
// padded when the unit ends. Binary headers and payloads are always written
// as separate units, so a header can be rewritten in place with an encoding
// of identical length.
//
// An InputStream is the reading counterpart over an io.ReadSeeker. It
// positions itself at the start of a unit (an offset measured in encoded
// bytes from the start of the data region) and then seeks and reads in
// decoded bytes within that unit.
package stream
