package core

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// ResolvedDate is a capture instant tagged with where it came from.
type ResolvedDate struct {
	Time       time.Time
	Provenance Provenance
}

// Resolver derives a capture date for a media file without mutating it.
// Sidecar JSON wins over folder-name inference; file modification time is
// never used as a source.
type Resolver struct {
	Root     string
	Logger   hclog.Logger
	Counters *Counters
}

// Resolve returns the capture date for path, or ok=false when neither a
// sidecar nor an enclosing folder name yields one.
func (r *Resolver) Resolve(path string) (ResolvedDate, bool) {
	if sidecar, prov := FindSidecar(path); sidecar != "" {
		t, err := ParseSidecar(sidecar)
		if err == nil {
			return ResolvedDate{Time: t, Provenance: prov}, true
		}
		r.Logger.Debug("sidecar did not yield a date", "path", sidecar, "error", err)
		if r.Counters != nil {
			r.Counters.Inc("resolve", "sidecar-parse-fail")
		}
	}

	if t, ok := InferFolderDate(path, r.Root); ok {
		return ResolvedDate{Time: t, Provenance: ProvenanceFolderName}, true
	}

	return ResolvedDate{}, false
}
