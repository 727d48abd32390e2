package core

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

var testStamp = time.Date(2020, time.January, 1, 9, 0, 0, 0, time.Local)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestWriterTagSets(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		class    ContainerClass
		wantTags []string
	}{
		{
			name:     "jpeg gets exif set",
			path:     "/in/a.jpg",
			class:    ClassJPEG,
			wantTags: []string{"EXIF:CreateDate", "EXIF:DateTimeOriginal", "EXIF:ModifyDate"},
		},
		{
			name:     "heic gets exif set",
			path:     "/in/a.heic",
			class:    ClassHEIC,
			wantTags: []string{"EXIF:CreateDate", "EXIF:DateTimeOriginal", "EXIF:ModifyDate"},
		},
		{
			name:     "png adds xmp",
			path:     "/in/a.png",
			class:    ClassPNG,
			wantTags: []string{"EXIF:CreateDate", "EXIF:DateTimeOriginal", "EXIF:ModifyDate", "XMP:DateCreated"},
		},
		{
			name:  "video gets quicktime and keys",
			path:  "/in/a.mp4",
			class: ClassVideo,
			wantTags: []string{
				"Keys:CreationDate",
				"QuickTime:CreateDate",
				"QuickTime:MediaCreateDate",
				"QuickTime:ModifyDate",
				"QuickTime:TrackCreateDate",
			},
		},
		{
			name:     "avi gets generic riff tags",
			path:     "/in/a.avi",
			class:    ClassAVI,
			wantTags: []string{"CreateDate", "DateTimeOriginal", "ModifyDate"},
		},
		{
			name:     "tiff is best effort exif",
			path:     "/in/a.tif",
			class:    ClassTIFF,
			wantTags: []string{"EXIF:CreateDate", "EXIF:DateTimeOriginal", "EXIF:ModifyDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := newFakeMeta()
			w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

			outcome := w.Apply(tt.path, tt.class, testStamp)
			if outcome != OutcomeWritten {
				t.Fatalf("Apply() = %q, want %q", outcome, OutcomeWritten)
			}
			if len(meta.writes) != 1 {
				t.Fatalf("expected 1 write, got %d", len(meta.writes))
			}
			got := sortedKeys(meta.writes[0].tags)
			if strings.Join(got, ",") != strings.Join(tt.wantTags, ",") {
				t.Errorf("written tags = %v, want %v", got, tt.wantTags)
			}
			for _, v := range meta.writes[0].tags {
				if v != "2020:01:01 09:00:00" {
					t.Errorf("tag value = %q, want %q", v, "2020:01:01 09:00:00")
				}
			}
		})
	}
}

func TestWriterSkipsAlreadyDated(t *testing.T) {
	meta := newFakeMeta()
	meta.setTag("/in/ok.jpg", "DateTimeOriginal", "2015:06:01 12:00:00")
	w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

	outcome := w.Apply("/in/ok.jpg", ClassJPEG, testStamp)
	if outcome != OutcomeAlreadyDated {
		t.Fatalf("Apply() = %q, want %q", outcome, OutcomeAlreadyDated)
	}
	if meta.writeCount() != 0 {
		t.Errorf("expected no writes, got %d", meta.writeCount())
	}
	if got := meta.ReadTag("/in/ok.jpg", "DateTimeOriginal"); got != "2015:06:01 12:00:00" {
		t.Errorf("tag changed to %q", got)
	}
}

func TestWriterSkipsDatedVideoWithoutDateTimeOriginal(t *testing.T) {
	// QuickTime containers carry CreateDate, never DateTimeOriginal; a
	// second pass must still see them as dated.
	meta := newFakeMeta()
	meta.setTag("/in/clip.mp4", "CreateDate", "2019:03:01 08:00:00")
	w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

	if outcome := w.Apply("/in/clip.mp4", ClassVideo, testStamp); outcome != OutcomeAlreadyDated {
		t.Fatalf("Apply() = %q, want %q", outcome, OutcomeAlreadyDated)
	}
	if meta.writeCount() != 0 {
		t.Errorf("expected no writes, got %d", meta.writeCount())
	}
}

func TestWriterDryRunNeverTouchesTool(t *testing.T) {
	meta := newFakeMeta()
	w := &Writer{Meta: meta, DryRun: true, Logger: hclog.NewNullLogger()}

	outcome := w.Apply("/in/new.jpg", ClassJPEG, testStamp)
	if outcome != OutcomeWritten {
		t.Fatalf("Apply() = %q, want %q", outcome, OutcomeWritten)
	}
	if meta.writeCount() != 0 {
		t.Fatalf("dry-run invoked the metadata tool %d times", meta.writeCount())
	}
}

func TestWriterIdempotent(t *testing.T) {
	meta := newFakeMeta()
	w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

	if outcome := w.Apply("/in/a.jpg", ClassJPEG, testStamp); outcome != OutcomeWritten {
		t.Fatalf("first Apply() = %q, want %q", outcome, OutcomeWritten)
	}
	if outcome := w.Apply("/in/a.jpg", ClassJPEG, testStamp); outcome != OutcomeAlreadyDated {
		t.Fatalf("second Apply() = %q, want %q", outcome, OutcomeAlreadyDated)
	}
	if meta.writeCount() != 1 {
		t.Errorf("expected exactly 1 write, got %d", meta.writeCount())
	}
}

func TestWriterAviFallsBackToFileModifyDate(t *testing.T) {
	meta := newFakeMeta()
	meta.failWrite = func(path string, tags map[string]string) bool {
		_, hasRiff := tags["DateTimeOriginal"]
		return hasRiff
	}
	w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

	outcome := w.Apply("/in/old.avi", ClassAVI, testStamp)
	if outcome != OutcomeWritten {
		t.Fatalf("Apply() = %q, want %q", outcome, OutcomeWritten)
	}
	if got := meta.ReadTag("/in/old.avi", "FileModifyDate"); got != "2020:01:01 09:00:00" {
		t.Errorf("FileModifyDate = %q, want the resolved date", got)
	}
}

func TestWriterPngFallbackChain(t *testing.T) {
	tests := []struct {
		name        string
		rejected    []string // a write containing any of these tags fails
		wantOutcome string
		wantTag     string
	}{
		{
			name:        "xmp only",
			rejected:    []string{"EXIF:DateTimeOriginal"},
			wantOutcome: OutcomeWritten,
			wantTag:     "XMP:DateCreated",
		},
		{
			name:        "legacy creation time chunk",
			rejected:    []string{"EXIF:DateTimeOriginal", "XMP:DateCreated"},
			wantOutcome: OutcomeWritten,
			wantTag:     "PNG:CreationTime",
		},
		{
			name:        "file mtime as last resort",
			rejected:    []string{"EXIF:DateTimeOriginal", "XMP:DateCreated", "PNG:CreationTime"},
			wantOutcome: OutcomeWritten,
			wantTag:     "FileModifyDate",
		},
		{
			name:        "everything rejected",
			rejected:    []string{"EXIF:DateTimeOriginal", "XMP:DateCreated", "PNG:CreationTime", "FileModifyDate"},
			wantOutcome: OutcomeWriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := newFakeMeta()
			meta.failWrite = func(path string, tags map[string]string) bool {
				for _, rejected := range tt.rejected {
					if _, ok := tags[rejected]; ok {
						return true
					}
				}
				return false
			}
			w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

			outcome := w.Apply("/in/shot.png", ClassPNG, testStamp)
			if outcome != tt.wantOutcome {
				t.Fatalf("Apply() = %q, want %q", outcome, tt.wantOutcome)
			}
			if tt.wantTag != "" {
				if got := meta.ReadTag("/in/shot.png", tt.wantTag); got != "2020:01:01 09:00:00" {
					t.Errorf("%s = %q, want the resolved date", tt.wantTag, got)
				}
			}
		})
	}
}

func TestWriterNonPngNonAviFailureIsFinal(t *testing.T) {
	meta := newFakeMeta()
	meta.failWrite = func(string, map[string]string) bool { return true }
	w := &Writer{Meta: meta, Logger: hclog.NewNullLogger()}

	if outcome := w.Apply("/in/clip.mp4", ClassVideo, testStamp); outcome != OutcomeWriteFailed {
		t.Fatalf("Apply() = %q, want %q", outcome, OutcomeWriteFailed)
	}
}
