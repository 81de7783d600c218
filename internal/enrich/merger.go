package enrich

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Merger layers dictionary metadata and caller operator records onto a draft receipt.
type Merger struct {
	dict   *dictionary.Dictionary
	logger *slog.Logger
}

// NewMerger returns a merger backed by dict.
func NewMerger(dict *dictionary.Dictionary, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{dict: dict, logger: logger}
}

// Enrich resolves draft.Operator against the active dictionary generation and returns
// the enriched copy. A draft without an operator is returned unchanged. records are
// matched in order; the first hit wins.
func (m *Merger) Enrich(draft entity.ParsedReceipt, records []entity.OperatorRecord) entity.ParsedReceipt {
	return m.EnrichWith(m.dict.Snapshot(), draft, records)
}

// EnrichWith is Enrich against one given snapshot, so a concurrent reload cannot mix
// generations within a record.
func (m *Merger) EnrichWith(snap *dictionary.Snapshot, draft entity.ParsedReceipt, records []entity.OperatorRecord) entity.ParsedReceipt {
	if !draft.HasOperator() {
		return draft
	}
	out := draft
	candidate := draft.Operator
	resolved := candidate
	var brand, application string

	if entry, ok := snap.Lookup(candidate); ok {
		resolved = entry.Alias
		if resolved != candidate {
			out.OperatorRaw = candidate
		}
		brand = entry.Operator
		application = entry.Application
	}
	out.Operator = resolved
	out.OperatorBrand = brand
	out.OperatorNormalized = snap.Normalize(resolved)

	metaKey := brand
	if metaKey == "" {
		metaKey = resolved
	}
	if md, ok := snap.OperatorMetadata(metaKey); ok {
		out.OperatorName = firstNonEmpty(md.DisplayName, md.Name, resolved)
		out.OperatorDescription = md.Description
		out.OperatorCategory = md.Category
		out.OperatorCountry = md.Country
		out.OperatorTags = md.Tags
		if application == "" && len(md.Applications) > 0 {
			application = md.Applications[0]
		}
	} else if brand != "" {
		out.OperatorName = brand
	}

	if application != "" {
		out.OperatorApplication = application
		if amd, ok := snap.ApplicationMetadata(application); ok {
			if out.OperatorBrand == "" {
				out.OperatorBrand = amd.Brand
			}
			out.OperatorApplicationTags = amd.Tags
			out.OperatorApplicationPlatforms = amd.Platforms
		}
	}

	if rec, ok := MatchRecord(out.OperatorNormalized, records); ok {
		id := rec.ID
		out.OperatorID = &id
		out.OperatorName = rec.Name
		switch {
		case strings.TrimSpace(rec.Description) != "":
			out.OperatorDescription = rec.Description
		case out.OperatorDescription == "":
			out.OperatorDescription = out.OperatorBrand
		}
	}

	m.logger.Debug("enrich.operator",
		"candidate", candidate,
		"resolved", resolved,
		"brand", out.OperatorBrand,
		"application", out.OperatorApplication,
		"matched_record", out.OperatorID != nil)
	return out
}

// MatchRecord returns the first record whose normalized name equals, contains or is
// contained in normalized. Records with names that normalize to empty are skipped.
func MatchRecord(normalized string, records []entity.OperatorRecord) (entity.OperatorRecord, bool) {
	if normalized == "" {
		return entity.OperatorRecord{}, false
	}
	for _, rec := range records {
		name := dictionary.Normalize(rec.Name)
		if name == "" {
			continue
		}
		if name == normalized || strings.Contains(normalized, name) || strings.Contains(name, normalized) {
			return rec, true
		}
	}
	return entity.OperatorRecord{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
