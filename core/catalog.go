package core

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/columnize"
	bolt "go.etcd.io/bbolt"
)

var catalogBucket = []byte("CATALOG")

// CatalogEntry is one media file's inventory record: what it is and whether
// a capture-date source exists for it. The catalog never mutates media and
// is not consulted by the fill or move runs.
type CatalogEntry struct {
	Class      string
	Size       int64
	HasDate    bool
	Provenance string
}

// CatalogAdd walks rootPath and records every media file in the database,
// resolving dates exactly as a fill run would but writing nothing to the
// files themselves.
func CatalogAdd(logger hclog.Logger, dbPath, rootPath string) error {
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return err
	}
	if info, err := os.Stat(rootPath); err != nil || !info.IsDir() {
		return fmt.Errorf("root %q is not a directory", rootPath)
	}

	files, err := collectMedia(logger, rootPath, "", IsMedia)
	if err != nil {
		return err
	}

	db, err := bolt.Open(dbPath, 0666, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	progress := StartProgress(len(files), os.Stdout)
	defer progress.Finish()

	resolver := &Resolver{Root: rootPath, Logger: logger, Counters: progress.Counters}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(catalogBucket)
		if err != nil {
			return err
		}

		for _, path := range files {
			info, err := os.Stat(path)
			if err != nil {
				logger.Debug("skipping unreadable file", "path", path, "error", err)
				progress.Step()
				continue
			}

			entry := &CatalogEntry{
				Class:      Classify(path).String(),
				Size:       info.Size(),
				Provenance: ProvenanceNone.String(),
			}
			if resolved, ok := resolver.Resolve(path); ok {
				entry.HasDate = true
				entry.Provenance = resolved.Provenance.String()
			}

			if err := putCatalogEntry(b, path, entry); err != nil {
				return err
			}
			progress.Step()
		}
		return nil
	})
}

// CatalogStats prints counts by container class and by date provenance,
// plus how many files still have no date source at all.
func CatalogStats(logger hclog.Logger, dbPath string) error {
	db, err := bolt.Open(dbPath, 0666, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(catalogBucket)
		if b == nil {
			return fmt.Errorf("catalog database %q is empty", dbPath)
		}

		classes := make(map[string]int)
		sources := make(map[string]int)
		files := 0
		undated := 0
		var bytesTotal int64

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entry, err := decodeCatalogEntry(v)
			if err != nil {
				return err
			}
			files++
			bytesTotal += entry.Size
			classes[entry.Class]++
			sources[entry.Provenance]++
			if !entry.HasDate {
				undated++
			}
		}

		var rows []string
		for class, n := range classes {
			rows = append(rows, fmt.Sprintf("class|%s|%d", class, n))
		}
		for source, n := range sources {
			rows = append(rows, fmt.Sprintf("source|%s|%d", source, n))
		}
		sort.Strings(rows)
		rows = append([]string{"Group|Key|Count"}, rows...)
		fmt.Println(columnize.SimpleFormat(rows))
		fmt.Println("")
		fmt.Printf("%d files (%d bytes); %d with no date source\n", files, bytesTotal, undated)
		return nil
	})
}

func putCatalogEntry(b *bolt.Bucket, path string, entry *CatalogEntry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return err
	}
	return b.Put([]byte(path), buf.Bytes())
}

func decodeCatalogEntry(v []byte) (*CatalogEntry, error) {
	var entry CatalogEntry
	if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
