// Package xmlfile writes and reads self-describing XML documents whose array
// payloads are block framed binary data.
//
// A document has a single root element:
//
//	<VTKFile type="ImageData" version="1.0" byte_order="LittleEndian"
//	         header_type="UInt32" compressor="vtkZLibDataCompressor">
//	  <ImageData ...>            primary content, any element tree
//	    <DataArray .../>         array leaves
//	  </ImageData>
//	  <AppendedData encoding="base64">
//	   _...                      payloads of appended arrays
//	  </AppendedData>
//	</VTKFile>
//
// Each DataArray is stored in one of three formats: ascii (values as text),
// binary (base64 payload inside the element) or appended (payload inside the
// AppendedData section, located by the element's offset attribute). The
// offset is counted in encoded bytes from the first byte after the "_" sigil.
//
// # Offset Reservation
//
// The offsets of appended arrays are only known once their payloads have been
// written, after the element tree. On a seekable output the Writer reserves a
// blank, fixed-width slot for each offset, writes the payloads, then seeks back
// and fills the slots. On a forward-only output it encodes the appended section
// into memory first. Both produce the same bytes.
//
// # Reading
//
// Reader.Open parses the root attributes first; the compressor they name
// decides the payload header layout of every array, so an unknown compressor
// fails Open. Arrays are read in full with ReadArray or in ranges with
// ReadTuples, ReadValues and ReadStrings.
package xmlfile
