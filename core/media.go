package core

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ContainerClass is the format family of a media file. It decides which
// metadata tag set is authoritative for the file.
type ContainerClass int

const (
	ClassOther ContainerClass = iota
	ClassJPEG
	ClassHEIC
	ClassPNG
	ClassTIFF
	ClassVideo // MP4, MOV, 3GP
	ClassAVI
)

func (c ContainerClass) String() string {
	switch c {
	case ClassJPEG:
		return "jpeg"
	case ClassHEIC:
		return "heic"
	case ClassPNG:
		return "png"
	case ClassTIFF:
		return "tiff"
	case ClassVideo:
		return "video"
	case ClassAVI:
		return "avi"
	default:
		return "other"
	}
}

var extToClass = map[string]ContainerClass{
	".jpg":  ClassJPEG,
	".jpeg": ClassJPEG,
	".heic": ClassHEIC,
	".png":  ClassPNG,
	".tif":  ClassTIFF,
	".tiff": ClassTIFF,
	".mp4":  ClassVideo,
	".mov":  ClassVideo,
	".3gp":  ClassVideo,
	".avi":  ClassAVI,
}

// ClassifyExt maps a file extension to its container class. The comparison
// is case-insensitive so .JPG and .jpg land in the same class.
func ClassifyExt(path string) ContainerClass {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := extToClass[ext]; ok {
		return c
	}
	return ClassOther
}

// Classify returns the container class for a file, correcting the
// extension-derived class when the byte signature contradicts it for the
// PNG/JPEG pair. Takeout archives occasionally carry JPEG bytes under a
// .png name and vice versa. Sniff failures keep the extension class.
func Classify(path string) ContainerClass {
	class := ClassifyExt(path)
	if class != ClassPNG && class != ClassJPEG {
		return class
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil || mtype == nil {
		return class
	}
	switch {
	case mtype.Is("image/png"):
		return ClassPNG
	case mtype.Is("image/jpeg"):
		return ClassJPEG
	}
	return class
}

// otherMediaExts are media formats outside the known container classes.
// The fill run still stamps them best-effort with the generic EXIF set;
// the mover never touches them.
var otherMediaExts = map[string]bool{
	".gif": true, ".bmp": true, ".webp": true, ".heif": true,
	".mkv": true, ".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpg": true, ".mpeg": true, ".mts": true, ".m2ts": true,
	".cr2": true, ".nef": true, ".arw": true, ".dng": true, ".orf": true,
	".rw2": true, ".pef": true, ".sr2": true, ".x3f": true,
}

// IsMedia reports whether the extension belongs to a format the fill run
// handles, including the best-effort ones.
func IsMedia(path string) bool {
	if ClassifyExt(path) != ClassOther {
		return true
	}
	return otherMediaExts[strings.ToLower(filepath.Ext(path))]
}

// IsMovable reports whether the extension belongs to the set of formats
// the mover considers.
func IsMovable(path string) bool {
	return ClassifyExt(path) != ClassOther
}
