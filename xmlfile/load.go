package xmlfile

import "github.com/arloliu/vtkxml/format"

// attributes the Writer derives from the array itself
var derivedAttrs = map[string]bool{
	"type":               true,
	"IdType":             true,
	"Name":               true,
	"NumberOfComponents": true,
	"NumberOfTuples":     true,
	"format":             true,
	"RangeMin":           true,
	"RangeMax":           true,
	offsetAttr:           true,
	digestAttr:           true,
}

// Load reads every array and returns a document that a Writer can write
// again, possibly with other settings. Arrays keep their format.
func (rd *Reader) Load() (*Document, error) {
	doc := &Document{Type: rd.doc.Type, Version: Version}
	if rd.doc.Root == nil {
		return doc, nil
	}

	root, err := rd.loadElement(rd.doc.Root)
	if err != nil {
		return nil, err
	}
	doc.Root = root

	return doc, nil
}

func (rd *Reader) loadElement(src *Element) (*Element, error) {
	dst := NewElement(src.Name)

	if src.Info != nil {
		a, err := rd.ReadArray(src.Info)
		if err != nil {
			return nil, err
		}
		dst.Data = &DataArray{Array: a, Format: src.Info.Format}
		for _, at := range src.Attrs {
			if !derivedAttrs[at.Name] {
				dst.Attrs = append(dst.Attrs, at)
			}
		}

		return dst, nil
	}

	dst.Attrs = append(dst.Attrs, src.Attrs...)
	for _, c := range src.Children {
		child, err := rd.loadElement(c)
		if err != nil {
			return nil, err
		}
		dst.Children = append(dst.Children, child)
	}

	return dst, nil
}

// SetFormat changes the format of every array below e.
func (e *Element) SetFormat(f format.DataFormat) {
	e.Walk(func(el *Element) {
		if el.Data != nil {
			el.Data.Format = f
		}
	})
}
