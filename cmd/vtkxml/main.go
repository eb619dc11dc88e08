package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vtkxml",
		Usage: "Inspect and convert XML array documents",
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "List the document settings and its arrays",
				Action:    infoCommand,
				ArgsUsage: "FILE",
			},
			{
				Name:      "dump",
				Usage:     "Print a range of tuples of one array",
				Action:    dumpCommand,
				ArgsUsage: "FILE ARRAY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "start", Usage: "first tuple"},
					&cli.IntFlag{Name: "count", Value: -1, Usage: "number of tuples, -1 for all"},
				},
			},
			{
				Name:      "convert",
				Usage:     "Rewrite a document with other storage settings",
				Action:    convertCommand,
				ArgsUsage: "IN OUT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "compressor", Usage: "compressor name, e.g. zlib, lz4, lzma, zstd, s2 or none"},
					&cli.IntFlag{Name: "level", Value: 5, Usage: "compression level"},
					&cli.StringFlag{Name: "format", Usage: "array format: ascii, binary or appended"},
					&cli.StringFlag{Name: "encoding", Value: "raw", Usage: "appended data encoding: raw or base64"},
					&cli.StringFlag{Name: "header-type", Value: "UInt64", Usage: "block header words: UInt32 or UInt64"},
					&cli.StringFlag{Name: "byte-order", Value: "LittleEndian", Usage: "LittleEndian or BigEndian"},
					&cli.IntFlag{Name: "block-size", Value: 32768, Usage: "uncompressed block size in bytes"},
					&cli.BoolFlag{Name: "checksums", Usage: "add xxhash64 payload digests"},
				},
			},
		},
	}
}
