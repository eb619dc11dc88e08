package xmlfile

import (
	"strconv"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/format"
)

// Version is the document format version emitted by the Writer.
const Version = "1.0"

// Document is the content of one file.
type Document struct {
	// Type is the content kind, written as the root type attribute.
	Type string
	// Version is the format version. The Writer always writes Version; the
	// Reader reports the version found in the file.
	Version string
	// Root is the primary content element.
	Root *Element
}

// NewDocument creates a document whose primary element is named after typ.
func NewDocument(typ string) *Document {
	return &Document{Type: typ, Version: Version, Root: NewElement(typ)}
}

// Attr is an element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the content tree.
//
// When writing, leaves created with AddArray carry Data. When reading,
// DataArray elements carry Info.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element

	Data *DataArray
	Info *ArrayInfo
}

// DataArray is an array to write with its storage format.
type DataArray struct {
	Array  *array.Array
	Format format.DataFormat
}

// NewElement creates an element without attributes or children.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// SetAttr sets attribute name, replacing an existing value.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})

	return e
}

// SetIntAttr sets attribute name to the decimal form of v.
func (e *Element) SetIntAttr(name string, v int64) *Element {
	return e.SetAttr(name, strconv.FormatInt(v, 10))
}

// Attr returns the value of attribute name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// AddChild appends a new child element and returns it.
func (e *Element) AddChild(name string) *Element {
	child := NewElement(name)
	e.Children = append(e.Children, child)

	return child
}

// AddArray appends a DataArray child holding a in the given format.
func (e *Element) AddArray(a *array.Array, f format.DataFormat) *Element {
	child := e.AddChild("DataArray")
	child.Data = &DataArray{Array: a, Format: f}

	return child
}

// Child returns the first child named name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Walk calls fn for e and its descendants in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Arrays returns the array infos below e in document order.
func (e *Element) Arrays() []*ArrayInfo {
	var infos []*ArrayInfo
	e.Walk(func(el *Element) {
		if el.Info != nil {
			infos = append(infos, el.Info)
		}
	})

	return infos
}

// ArrayInfo describes a DataArray found by the Reader.
type ArrayInfo struct {
	Name string
	// Type is the host type: TypeIDType for arrays marked IdType="1".
	Type format.DataType
	// StoredType is the type attribute of the element.
	StoredType format.DataType
	Components int
	Tuples     int
	Format     format.DataFormat
	// Offset locates an appended payload.
	Offset int64

	HasDigest bool
	Digest    uint64

	HasRange bool
	RangeMin float64
	RangeMax float64

	Element *Element

	text []byte
}

// NumValues returns Components * Tuples.
func (info *ArrayInfo) NumValues() int {
	return info.Components * info.Tuples
}

// payloadSize returns the stream size of the declared values, or -1 for
// strings, whose size is not fixed.
func (info *ArrayInfo) payloadSize() int64 {
	switch info.Type {
	case format.TypeString:
		return -1
	case format.TypeBit:
		return (int64(info.NumValues()) + 7) / 8
	default:
		return int64(info.NumValues()) * int64(info.streamSize())
	}
}

// streamSize returns the persisted size of one value.
func (info *ArrayInfo) streamSize() int {
	switch info.StoredType {
	case format.TypeString, format.TypeBit:
		return 1
	default:
		return info.StoredType.Size()
	}
}
