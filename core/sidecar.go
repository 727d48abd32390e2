package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Provenance records where a resolved capture date came from. It is
// reported in summaries but never changes the value written.
type Provenance int

const (
	ProvenanceNone Provenance = iota
	ProvenanceSidecarPrimary
	ProvenanceSidecarSupplemental
	ProvenanceFolderName
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceSidecarPrimary:
		return "sidecar-primary"
	case ProvenanceSidecarSupplemental:
		return "sidecar-supplemental"
	case ProvenanceFolderName:
		return "folder-name"
	default:
		return "none"
	}
}

// sidecarMetadata is the slice of the Takeout sidecar schema we consume.
// Everything else in the document is ignored.
type sidecarMetadata struct {
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
}

// FindSidecar probes for a companion JSON next to a media file. Takeout's
// sidecar naming is fragile: besides the two plain forms it emits
// "supplemental-metadata" and several truncations of it. The first existing
// candidate wins.
func FindSidecar(mediaPath string) (string, Provenance) {
	dir := filepath.Dir(mediaPath)
	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	primary := []string{
		base + ".json",
		stem + ".json",
	}
	for _, name := range primary {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, ProvenanceSidecarPrimary
		}
	}

	supplemental := []string{
		base + ".supplemental-metadata.json",
		base + ".supplemental.json",
		base + ".supplemental-m.json",
		base + ".supplemental-.json",
	}
	for _, name := range supplemental {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, ProvenanceSidecarSupplemental
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, base+".supp*.json"))
	if err == nil && len(matches) > 0 {
		sort.Strings(matches)
		return matches[0], ProvenanceSidecarSupplemental
	}

	return "", ProvenanceNone
}

// ParseSidecar extracts photoTakenTime.timestamp from a sidecar and converts
// it to local-civil time, which is how viewers interpret the EXIF fields we
// later write. A timestamp of "0" is the epoch and valid.
func ParseSidecar(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open sidecar: %w", err)
	}
	defer f.Close()

	var meta sidecarMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode sidecar JSON: %w", err)
	}

	if meta.PhotoTakenTime.Timestamp == "" {
		return time.Time{}, errors.New("photo taken timestamp is missing in sidecar")
	}

	timestampUnix, err := strconv.ParseInt(meta.PhotoTakenTime.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", meta.PhotoTakenTime.Timestamp, err)
	}

	return time.Unix(timestampUnix, 0), nil
}
