package core

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Folder date patterns, most specific first. Within one path component a
// full date beats year-month beats bare year; across components the one
// closest to the file wins.
var (
	reDateSep     = regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-_](\d{2})[-_](\d{2})(?:[^0-9]|$)`)
	reDateCompact = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{2})(\d{2})(?:[^0-9]|$)`)
	reMonthSep    = regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-_](\d{2})(?:[^0-9]|$)`)
	reMonthCompat = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{2})(?:[^0-9]|$)`)
	reYearOnly    = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(?:[^0-9]|$)`)
)

// InferFolderDate derives a capture date from the directory names enclosing
// a file, walking from the file's parent up to the scan root. Components
// above the root never match. Returns the zero time when nothing matches.
func InferFolderDate(path, root string) (time.Time, bool) {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return time.Time{}, false
	}

	var components []string
	if rel != "." {
		components = strings.Split(rel, string(filepath.Separator))
	}
	components = append([]string{filepath.Base(root)}, components...)

	for i := len(components) - 1; i >= 0; i-- {
		if t, ok := matchComponent(components[i]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// matchComponent tries the patterns against one path component. A match
// with out-of-range fields disqualifies the whole component: "2019-13-45"
// yields nothing rather than degrading to the bare-year reading of "2019".
func matchComponent(name string) (time.Time, bool) {
	for _, re := range []*regexp.Regexp{reDateSep, reDateCompact} {
		if m := re.FindStringSubmatch(name); m != nil {
			t, ok := civilDate(m[1], m[2], m[3])
			return t, ok
		}
	}
	for _, re := range []*regexp.Regexp{reMonthSep, reMonthCompat} {
		if m := re.FindStringSubmatch(name); m != nil {
			t, ok := civilDate(m[1], m[2], "01")
			return t, ok
		}
	}
	if m := reYearOnly.FindStringSubmatch(name); m != nil {
		t, ok := civilDate(m[1], "01", "01")
		return t, ok
	}
	return time.Time{}, false
}

// civilDate builds a local midnight date, rejecting out-of-range fields
// like month 13 or day 45 instead of letting time.Date normalize them.
func civilDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)

	if y < 1900 || y > 2100 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
