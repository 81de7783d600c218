package dictionary

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Dictionary serves alias resolution from an atomically swapped Snapshot.
// Readers never block; Reload serializes only the compare-and-swap step.
type Dictionary struct {
	path   string
	logger *slog.Logger

	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
}

// SampleAliases are resolved after a reload or check so the result can be eyeballed.
var SampleAliases = []string{
	"UPAY P2P",
	"PAYME P2P, UZ",
	"TENGE 24 P2P UZCARD HUMO, UZ",
	"Unknown provider",
}

// ReloadResult summarizes one reload.
type ReloadResult struct {
	Entries       int    `json:"entries"`
	BeforeEntries int    `json:"before_entries"`
	Changed       bool   `json:"changed"`
	Checksum      string `json:"checksum"`
	Version       string `json:"version,omitempty"`
	Operators     int    `json:"operators"`
	Applications  int    `json:"applications"`
}

// New loads the dictionary at path.
func New(path string, logger *slog.Logger) (*Dictionary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	d := &Dictionary{path: path, logger: logger}
	d.current.Store(snap)
	logger.Info("dictionary.load.ok",
		"path", path,
		"entries", len(snap.Entries),
		"operators", len(snap.Operators),
		"applications", len(snap.Applications),
		"version", snap.Version,
		"checksum", snap.Checksum)
	return d, nil
}

// NewFromSnapshot wraps an already parsed snapshot. Reload is unavailable when path is empty.
func NewFromSnapshot(snap *Snapshot, path string, logger *slog.Logger) *Dictionary {
	if logger == nil {
		logger = slog.Default()
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	d := &Dictionary{path: path, logger: logger}
	d.current.Store(snap)
	return d
}

// Snapshot returns the active generation. Callers must treat it as read-only.
func (d *Dictionary) Snapshot() *Snapshot {
	return d.current.Load()
}

// Lookup resolves candidate against the active snapshot. Callers that need several
// answers for one record should take Snapshot once and ask it instead.
func (d *Dictionary) Lookup(candidate string) (AliasEntry, bool) {
	return d.current.Load().Lookup(candidate)
}

// Normalize is Snapshot.Normalize on the active snapshot.
func (d *Dictionary) Normalize(candidate string) string {
	return d.current.Load().Normalize(candidate)
}

// OperatorMetadata is Snapshot.OperatorMetadata on the active snapshot.
func (d *Dictionary) OperatorMetadata(name string) (Metadata, bool) {
	return d.current.Load().OperatorMetadata(name)
}

// ApplicationMetadata is Snapshot.ApplicationMetadata on the active snapshot.
func (d *Dictionary) ApplicationMetadata(name string) (Metadata, bool) {
	return d.current.Load().ApplicationMetadata(name)
}

// Lookup returns the first entry, longest normalized alias first, whose alias equals,
// is contained in, or contains the normalized candidate.
func (s *Snapshot) Lookup(candidate string) (AliasEntry, bool) {
	norm := Normalize(candidate)
	if norm == "" || s == nil {
		return AliasEntry{}, false
	}
	for _, e := range s.Entries {
		if e.Normalized == "" {
			continue
		}
		if e.Normalized == norm ||
			strings.Contains(norm, e.Normalized) ||
			strings.Contains(e.Normalized, norm) {
			return e, true
		}
	}
	return AliasEntry{}, false
}

// Normalize returns the matched entry's normalized alias, else the plain normalization.
func (s *Snapshot) Normalize(candidate string) string {
	if e, ok := s.Lookup(candidate); ok {
		return e.Normalized
	}
	return Normalize(candidate)
}

// OperatorMetadata returns metadata for the exact (trimmed) operator name.
func (s *Snapshot) OperatorMetadata(name string) (Metadata, bool) {
	if s == nil {
		return Metadata{}, false
	}
	return metadataFor(s.Operators, name)
}

// ApplicationMetadata returns metadata for the exact (trimmed) application name.
func (s *Snapshot) ApplicationMetadata(name string) (Metadata, bool) {
	if s == nil {
		return Metadata{}, false
	}
	return metadataFor(s.Applications, name)
}

func metadataFor(m map[string]Metadata, name string) (Metadata, bool) {
	key := strings.TrimSpace(name)
	if key == "" {
		return Metadata{}, false
	}
	md, ok := m[key]
	if !ok {
		return Metadata{}, false
	}
	return md.clone(), true
}

// Reload re-reads the source. On failure the active snapshot is kept.
func (d *Dictionary) Reload() (ReloadResult, error) {
	if d.path == "" {
		return ReloadResult{}, fmt.Errorf("dictionary has no source path")
	}
	next, err := Load(d.path)
	if err != nil {
		d.logger.Error("dictionary.reload.failed", "path", d.path, "error", err)
		return ReloadResult{}, err
	}

	d.reloadMu.Lock()
	prev := d.current.Load()
	changed := prev == nil || prev.Checksum != next.Checksum
	d.current.Store(next)
	d.reloadMu.Unlock()

	res := ReloadResult{
		Entries:      len(next.Entries),
		Changed:      changed,
		Checksum:     next.Checksum,
		Version:      next.Version,
		Operators:    len(next.Operators),
		Applications: len(next.Applications),
	}
	if prev != nil {
		res.BeforeEntries = len(prev.Entries)
	}
	d.logger.Info("dictionary.reload.ok",
		"path", d.path,
		"entries", res.Entries,
		"before_entries", res.BeforeEntries,
		"changed", res.Changed,
		"version", res.Version)
	return res, nil
}

// Size returns the number of alias entries.
func (d *Dictionary) Size() int { return len(d.current.Load().Entries) }

// Checksum returns the sha256 of the active document.
func (d *Dictionary) Checksum() string { return d.current.Load().Checksum }

// Version returns the document's version marker, possibly empty.
func (d *Dictionary) Version() string { return d.current.Load().Version }

// Path returns the source path.
func (d *Dictionary) Path() string { return d.path }

// Sources returns a copy of the provenance list.
func (d *Dictionary) Sources() []Source {
	return append([]Source(nil), d.current.Load().Sources...)
}
