package dataset

import (
	"log"
	"strings"

	"charselect/pkg/models"
)

// Index maps every alias of a record (display name, CN name, EN name) to the
// record. Keys are trimmed and case-sensitive; a later record reusing an
// alias replaces the earlier one.
type Index struct {
	byAlias    map[string]models.CharacterRecord
	order      []string
	collisions int
}

// Build indexes records in load order and returns the deduplicated list of
// display names. The list is never empty.
func Build(records []models.CharacterRecord) (*Index, []string) {
	return build(records, log.Default())
}

func build(records []models.CharacterRecord, logger *log.Logger) (*Index, []string) {
	idx := &Index{byAlias: make(map[string]models.CharacterRecord, len(records)*3)}
	list := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		display := rec.DisplayName()
		for _, alias := range []string{display, rec.NameCN, rec.NameEN} {
			idx.put(alias, rec, logger)
		}

		if _, ok := seen[display]; ok {
			continue
		}
		seen[display] = struct{}{}
		list = append(list, display)
	}

	if len(list) == 0 {
		list = []string{models.NoDataSentinel}
	}
	return idx, list
}

func (idx *Index) put(alias string, rec models.CharacterRecord, logger *log.Logger) {
	key := strings.TrimSpace(alias)
	if key == "" {
		return
	}
	prev, exists := idx.byAlias[key]
	if !exists {
		idx.order = append(idx.order, key)
	} else if prev != rec {
		idx.collisions++
		if logger != nil {
			logger.Printf("[dataset] alias collision %q: %q replaced by %q", key, prev.DisplayName(), rec.DisplayName())
		}
	}
	idx.byAlias[key] = rec
}

// EmptyIndex is the index of a dataset that failed to load.
func EmptyIndex() *Index {
	return &Index{byAlias: map[string]models.CharacterRecord{}}
}

func (idx *Index) Resolve(alias string) (models.CharacterRecord, bool) {
	if idx == nil {
		return models.CharacterRecord{}, false
	}
	rec, ok := idx.byAlias[strings.TrimSpace(alias)]
	return rec, ok
}

// IconURL resolves alias and returns its icon URL, or "" when unknown.
func (idx *Index) IconURL(alias string) string {
	rec, ok := idx.Resolve(alias)
	if !ok {
		return ""
	}
	return rec.IconURL
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byAlias)
}

// Aliases returns the keys in first-insertion order.
func (idx *Index) Aliases() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.order...)
}

func (idx *Index) Collisions() int {
	if idx == nil {
		return 0
	}
	return idx.collisions
}
