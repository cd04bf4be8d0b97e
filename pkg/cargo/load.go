package cargo

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/upkeep/pkg/depgraph"
	errs "github.com/matzehuels/upkeep/pkg/errors"
	"github.com/matzehuels/upkeep/pkg/graph"
)

// Format identifies the shape of a loaded graph document.
type Format string

const (
	FormatMetadata Format = "cargo-metadata"
	FormatLockfile Format = "Cargo.lock"
	FormatGraph    Format = "graph"
)

// formatUnknown is returned by Detect for content no decoder recognizes.
const formatUnknown Format = ""

// StdinPath selects the reader passed to Load instead of a file.
const StdinPath = "-"

// Load reads the resolved graph at path.
//
// StdinPath reads cargo metadata or graph JSON from stdin. Lockfiles are
// recognized by name. JSON documents are sniffed: a document with both
// "packages" and "edges" is a normalized graph, anything else is cargo
// metadata. Files without a recognized name are sniffed by content.
func Load(path string, stdin io.Reader) (depgraph.Input, Format, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		if stdin == nil {
			return depgraph.Input{}, "", errs.New(errs.ErrCodeInvalidInput, "no stdin available")
		}
		data, err = io.ReadAll(stdin)
		if err != nil {
			return depgraph.Input{}, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read stdin")
		}
	} else {
		if err := errs.ValidatePath(path); err != nil {
			return depgraph.Input{}, "", err
		}
		data, err = os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return depgraph.Input{}, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		if err != nil {
			return depgraph.Input{}, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
		}
	}

	format := Detect(path, data)
	if format == formatUnknown {
		return depgraph.Input{}, "", errs.New(errs.ErrCodeUnsupported,
			"%s is not a Cargo.lock, cargo metadata or upkeep graph document", path)
	}
	in, err := decode(format, data)
	if err != nil {
		return depgraph.Input{}, "", err
	}
	return in, format, nil
}

// Detect names the format of data read from path, or returns the empty
// Format when nothing matches.
func Detect(path string, data []byte) Format {
	if path != StdinPath && (Lockfile{}).Supports(path) {
		return FormatLockfile
	}
	if path == StdinPath || (Metadata{}).Supports(path) || looksLikeJSON(data) {
		if graph.Sniff(data) {
			return FormatGraph
		}
		return FormatMetadata
	}
	if looksLikeLockfile(data) {
		return FormatLockfile
	}
	return formatUnknown
}

// Decoders returns the cargo decoders in detection order.
func Decoders() []Decoder {
	return []Decoder{Lockfile{}, Metadata{}}
}

func decode(format Format, data []byte) (depgraph.Input, error) {
	if format == FormatGraph {
		gj, err := graph.UnmarshalGraph(data)
		if err != nil {
			return depgraph.Input{}, err
		}
		return graph.ToInput(gj)
	}
	for _, d := range Decoders() {
		if d.Type() == format {
			return d.Decode(bytes.NewReader(data))
		}
	}
	return depgraph.Input{}, errs.New(errs.ErrCodeUnsupported, "unsupported graph format %q", format)
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// looksLikeLockfile matches Cargo's generated header, a version line or a
// package table.
func looksLikeLockfile(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("# This file is automatically @generated by Cargo")) ||
		bytes.HasPrefix(trimmed, []byte("version")) ||
		bytes.Contains(trimmed, []byte("[[package]]"))
}

func pathExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
