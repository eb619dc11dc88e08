package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/arloliu/vtkxml"
	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/encoding"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/hash"
	"github.com/arloliu/vtkxml/xmlfile"
)

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", c.Command.Name, n, c.NArg())
	}

	return c.Args().Slice(), nil
}

func infoCommand(c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	f, err := vtkxml.OpenFile(a[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out := c.App.Writer
	doc := f.Document()
	fmt.Fprintf(out, "type:        %s\n", doc.Type)
	fmt.Fprintf(out, "version:     %s\n", doc.Version)
	fmt.Fprintf(out, "byte order:  %s\n", endian.Name(f.ByteOrder()))
	fmt.Fprintf(out, "header type: %s\n", f.HeaderType())
	fmt.Fprintf(out, "compression: %s\n", f.Compression())
	if enc, ok := f.AppendedEncoding(); ok {
		fmt.Fprintf(out, "appended:    %s\n", enc)
	}
	fmt.Fprintln(out)

	for _, info := range f.Arrays() {
		printArrayInfo(out, info)
	}

	return nil
}

func printArrayInfo(out io.Writer, info *xmlfile.ArrayInfo) {
	fmt.Fprintf(out, "%-24s %-8s %4d x %-10d %-8s", info.Name, info.Type, info.Components, info.Tuples, info.Format)
	if info.Format == format.FormatAppended {
		fmt.Fprintf(out, " offset=%d", info.Offset)
	}
	if info.HasRange {
		fmt.Fprintf(out, " range=[%g, %g]", info.RangeMin, info.RangeMax)
	}
	if info.HasDigest {
		fmt.Fprintf(out, " xxhash64=%s", hash.Format(info.Digest))
	}
	fmt.Fprintln(out)
}

func dumpCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}

	f, err := vtkxml.OpenFile(a[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Array(a[1])
	if err != nil {
		return err
	}

	start := c.Int("start")
	count := c.Int("count")
	if count < 0 {
		count = max(info.Tuples-start, 0)
	}

	out := c.App.Writer
	if info.Type == format.TypeString {
		strs, err := f.ReadStrings(info, start, count)
		if err != nil {
			return err
		}
		for i, s := range strs {
			fmt.Fprintf(out, "%d: %q\n", start+i, s)
		}

		return nil
	}

	arr, err := f.ReadTuples(info, start, count)
	if err != nil {
		return err
	}

	return printTuples(out, arr, start)
}

func printTuples(out io.Writer, arr *array.Array, start int) error {
	comps := arr.Components()
	var line []byte
	for t := 0; t < arr.Tuples(); t++ {
		line = fmt.Appendf(line[:0], "%d:", start+t)
		for k := 0; k < comps; k++ {
			line = append(line, ' ')
			i := t*comps + k
			if arr.Type() == format.TypeBit {
				line = append(line, bitText(arr.Bit(i))...)
			} else {
				line = encoding.AppendValue(line, arr.Type(), arr.Bytes(), i)
			}
		}
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return err
		}
	}

	return nil
}

func bitText(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

func convertCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}

	opts, err := convertOptions(c)
	if err != nil {
		return err
	}

	f, err := vtkxml.OpenFile(a[0])
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := f.Load()
	if err != nil {
		return err
	}
	if name := c.String("format"); name != "" {
		df, ok := format.ParseDataFormat(name)
		if !ok {
			return fmt.Errorf("unknown format %q", name)
		}
		doc.Root.SetFormat(df)
	}

	return vtkxml.WriteFile(a[1], doc, opts...)
}

func convertOptions(c *cli.Context) ([]xmlfile.Option, error) {
	engine, err := endian.ParseByteOrder(c.String("byte-order"))
	if err != nil {
		return nil, err
	}
	ht, ok := format.ParseHeaderType(c.String("header-type"))
	if !ok {
		return nil, fmt.Errorf("unknown header type %q", c.String("header-type"))
	}
	enc, ok := format.ParseAppendedEncoding(strings.ToLower(c.String("encoding")))
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q", c.String("encoding"))
	}

	return []xmlfile.Option{
		xmlfile.WithByteOrder(engine),
		xmlfile.WithHeaderType(ht),
		xmlfile.WithCompressor(c.String("compressor"), c.Int("level")),
		xmlfile.WithAppendedEncoding(enc),
		xmlfile.WithBlockSize(c.Int("block-size")),
		xmlfile.WithChecksums(c.Bool("checksums")),
	}, nil
}
