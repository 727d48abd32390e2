package core

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// exifTimeLayout is the date format every mainstream reader expects in the
// capture-date fields.
const exifTimeLayout = "2006:01:02 15:04:05"

// Outcomes of one writer pass over one file.
const (
	OutcomeWritten      = "written"
	OutcomeAlreadyDated = "already-dated"
	OutcomeNoDateSource = "no-date-source"
	OutcomeWriteFailed  = "write-failed"
)

// Writer stamps a resolved capture date into a file's native metadata
// container. All mutation is funneled through writeGate so dry-run mode
// provably never reaches the metadata tool.
type Writer struct {
	Meta   Metadata
	DryRun bool
	Logger hclog.Logger
}

// tagSetFor picks the container-class-specific tags. Containers disagree on
// which names are authoritative: EXIF for JPEG/HEIC, QuickTime plus Keys
// for MP4/MOV/3GP, a mixture for PNG, generic RIFF tags for AVI.
func tagSetFor(class ContainerClass, stamp string) map[string]string {
	switch class {
	case ClassPNG:
		return map[string]string{
			"EXIF:DateTimeOriginal": stamp,
			"EXIF:CreateDate":       stamp,
			"EXIF:ModifyDate":       stamp,
			"XMP:DateCreated":       stamp,
		}
	case ClassVideo:
		return map[string]string{
			"QuickTime:CreateDate":      stamp,
			"QuickTime:ModifyDate":      stamp,
			"QuickTime:TrackCreateDate": stamp,
			"QuickTime:MediaCreateDate": stamp,
			"Keys:CreationDate":         stamp,
		}
	case ClassAVI:
		return map[string]string{
			"DateTimeOriginal": stamp,
			"CreateDate":       stamp,
			"ModifyDate":       stamp,
		}
	default:
		// JPEG, HEIC, TIFF, and best effort for everything else.
		return map[string]string{
			"EXIF:DateTimeOriginal": stamp,
			"EXIF:CreateDate":       stamp,
			"EXIF:ModifyDate":       stamp,
		}
	}
}

// originalDateTags lists, per container class, the tags whose presence
// means the file already carries its capture date. Containers that never
// gain DateTimeOriginal (QuickTime video) are also checked on the tags the
// writer actually sets, so a second pass over the same tree writes nothing.
func originalDateTags(class ContainerClass) []string {
	switch class {
	case ClassPNG:
		return []string{"DateTimeOriginal", "CreateDate", "XMP:DateCreated"}
	case ClassVideo:
		return []string{"DateTimeOriginal", "CreateDate", "TrackCreateDate", "MediaCreateDate"}
	case ClassAVI:
		return []string{"DateTimeOriginal", "CreateDate"}
	default:
		return []string{"DateTimeOriginal"}
	}
}

// alreadyDated reports whether the file carries a value that looks like a
// date in any of its class's original-date tags.
func alreadyDated(meta Metadata, path string, class ContainerClass) bool {
	tags := originalDateTags(class)
	values := meta.ReadTags(path, tags)
	for _, tag := range tags {
		v := values[tag]
		if v != "" && v[0] >= '0' && v[0] <= '9' {
			return true
		}
	}
	return false
}

// Apply writes the capture date into path, idempotently. A file that
// already carries its original date is left untouched.
func (w *Writer) Apply(path string, class ContainerClass, t time.Time) string {
	if alreadyDated(w.Meta, path, class) {
		w.Logger.Debug("original date already set", "path", path)
		return OutcomeAlreadyDated
	}

	stamp := t.Format(exifTimeLayout)
	tags := tagSetFor(class, stamp)

	if err := w.writeGate(path, tags); err != nil {
		return w.fallback(path, class, stamp, err)
	}

	w.Logger.Debug("wrote capture date", "path", path, "date", stamp, "class", class.String())
	return OutcomeWritten
}

// writeGate is the single choke point for metadata mutation. In dry-run it
// reports the prospective tag set and stops short of the tool.
func (w *Writer) writeGate(path string, tags map[string]string) error {
	if w.DryRun {
		w.Logger.Debug("dry-run: would write tags", "path", path, "tags", tags)
		return nil
	}
	return w.Meta.WriteTags(path, tags)
}

// fallback handles containers whose primary tag set is sometimes rejected.
// AVI falls back to the filesystem modification date, which cloud services
// use for ordering when container tags are absent. PNG retries with
// progressively older conventions before giving up.
func (w *Writer) fallback(path string, class ContainerClass, stamp string, err error) string {
	switch class {
	case ClassAVI:
		w.Logger.Debug("avi tag write failed, setting file mtime", "path", path, "error", err)
		if w.writeGate(path, map[string]string{"FileModifyDate": stamp}) == nil {
			return OutcomeWritten
		}
	case ClassPNG:
		w.Logger.Debug("png tag write failed, trying fallbacks", "path", path, "error", err)
		for _, tags := range []map[string]string{
			{"XMP:DateCreated": stamp},
			{"PNG:CreationTime": stamp},
			{"FileModifyDate": stamp},
		} {
			if w.writeGate(path, tags) == nil {
				return OutcomeWritten
			}
		}
	default:
		w.Logger.Debug("tag write failed", "path", path, "error", err)
	}
	return OutcomeWriteFailed
}
