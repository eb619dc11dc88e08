// Package encoding converts array values between their host representation
// and the forms persisted in a document.
//
// # Index Narrowing
//
// Host indices are 64-bit. Documents declaring a 32-bit id width store them as
// Int32: NarrowIDs truncates each value (optionally reporting values that do
// not fit as errs.ErrIndexOverflow) and WidenIDs sign-extends them back.
//
// # NUL-Terminated Strings
//
// String arrays are persisted as one run of NUL-terminated byte sequences.
// CStringPacker fills arbitrarily sized blocks from a []string, carrying a
// partially written string into the next block. CStringUnpacker performs the
// reverse, carrying a partial string across fed buffers.
//
// # ASCII
//
// ASCIIWriter renders values six per row using the shortest decimal form
// that parses back to the identical value; ParseASCII reverses it.
package encoding
