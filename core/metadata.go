package core

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	exiftool "github.com/barasher/go-exiftool"
	"github.com/hashicorp/go-hclog"
)

// Metadata is the single doorway to media metadata. Everything that touches
// tags goes through here so tests can swap in a fake and so the external
// tool can be replaced without touching the resolver, writer, or mover.
type Metadata interface {
	// ReadTag returns the tag's textual value, or "" if the tag is absent
	// or the file cannot be read.
	ReadTag(path, tag string) string

	// ReadTags returns one entry per requested tag; absent tags map to "".
	ReadTags(path string, tags []string) map[string]string

	// WriteTags writes the given tag-value pairs to the file, overwriting
	// the original in place. No _original backup is retained.
	WriteTags(path string, tags map[string]string) error

	Close() error
}

// MetadataFactory builds a private Metadata handle for one worker. Workers
// never share a tool session.
type MetadataFactory func() (Metadata, error)

// exiftoolBin is the external tool invoked for writes.
const exiftoolBin = "exiftool"

// ExifTool adapts the exiftool binary. Reads go through a
// barasher/go-exiftool session; writes spawn a fresh short-lived process
// per file with -overwrite_original so no backup copy is left beside the
// mutated media.
type ExifTool struct {
	et     *exiftool.Exiftool
	logger hclog.Logger
}

// NewExifTool starts an exiftool session. Fails up front when the binary
// is not installed.
func NewExifTool(logger hclog.Logger) (*ExifTool, error) {
	if _, err := exec.LookPath(exiftoolBin); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", exiftoolBin, err)
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifTool{et: et, logger: logger}, nil
}

// bareTag strips a group prefix like "EXIF:" or "Keys:". The tool reports
// extracted tags without their group.
func bareTag(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func (x *ExifTool) ReadTag(path, tag string) string {
	return x.ReadTags(path, []string{tag})[tag]
}

func (x *ExifTool) ReadTags(path string, tags []string) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[tag] = ""
	}

	fms := x.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return out
	}
	fm := fms[0]
	if fm.Err != nil {
		x.logger.Debug("metadata read failed", "path", path, "error", fm.Err)
		return out
	}

	for _, tag := range tags {
		if v, err := fm.GetString(bareTag(tag)); err == nil {
			out[tag] = v
		}
	}
	return out
}

func (x *ExifTool) WriteTags(path string, tags map[string]string) error {
	keys := make([]string, 0, len(tags))
	for tag := range tags {
		keys = append(keys, tag)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(tags)+2)
	for _, tag := range keys {
		args = append(args, "-"+tag+"="+tags[tag])
	}
	args = append(args, "-overwrite_original", path)

	output, err := exec.Command(exiftoolBin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("exiftool write failed for %q: %w (output: %s)",
			path, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (x *ExifTool) Close() error {
	return x.et.Close()
}
