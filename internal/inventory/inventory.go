package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var embeddedURL = regexp.MustCompile(`https?://[^\s<>"']+`)

// LoadReferences reads a YAML inventory. Row numbers are 1-indexed in file
// order; entries with no fields at all keep their row number but are
// skipped. Entries without an id get the zero-padded row number.
func LoadReferences(path string) ([]Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InventoryError{Message: err.Error(), Path: path, Cause: ErrCauseReadFailure}
	}

	var doc inventoryDTO
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InventoryError{Message: err.Error(), Path: path, Cause: ErrCauseParseFailure}
	}

	refs := make([]Reference, 0, len(doc.References))
	seen := make(map[string]int, len(doc.References))
	for i, dto := range doc.References {
		row := i + 1
		if dto.isEmpty() {
			continue
		}
		ref := toReference(dto, row)
		if prev, dup := seen[ref.ID]; dup {
			return nil, &InventoryError{
				Message: fmt.Sprintf("id %q used by rows %d and %d", ref.ID, prev, row),
				Path:    path,
				Cause:   ErrCauseParseFailure,
			}
		}
		seen[ref.ID] = row
		refs = append(refs, ref)
	}
	return refs, nil
}

func toReference(dto referenceDTO, row int) Reference {
	id := strings.TrimSpace(dto.ID)
	if id == "" {
		id = FormatRowID(row)
	}
	return Reference{
		ID:         id,
		Row:        row,
		Office:     strings.TrimSpace(dto.Office),
		DocNumber:  strings.TrimSpace(dto.DocNumber),
		Title:      strings.TrimSpace(dto.Title),
		IssueDate:  strings.TrimSpace(dto.Date),
		DocType:    strings.TrimSpace(dto.Type),
		URLs:       CollectURLs(dto.URLs, dto.Notes),
		MatchedURL: strings.TrimSpace(dto.MatchedURL),
	}
}

// CollectURLs merges explicit URL cells with URLs embedded in free text,
// deduplicated by exact string in first-seen order.
func CollectURLs(cells []string, text string) []string {
	urls := []string{}
	seen := map[string]struct{}{}
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if strings.HasPrefix(cell, "http") {
			add(cell)
		}
	}
	for _, match := range embeddedURL.FindAllString(text, -1) {
		add(strings.TrimRight(match, ".,;:)"))
	}
	return urls
}

// FormatRowID renders a row number the way references are keyed on disk.
func FormatRowID(row int) string {
	return fmt.Sprintf("%04d", row)
}

// SelectRange keeps references whose row is within [start, end]. end <= 0
// means no upper bound.
func SelectRange(refs []Reference, start, end int) ([]Reference, error) {
	if start < 1 {
		start = 1
	}
	if end > 0 && end < start {
		return nil, &InventoryError{
			Message: fmt.Sprintf("end %d before start %d", end, start),
			Cause:   ErrCauseInvalidRange,
		}
	}
	selected := make([]Reference, 0, len(refs))
	for _, ref := range refs {
		if ref.Row < start {
			continue
		}
		if end > 0 && ref.Row > end {
			break
		}
		selected = append(selected, ref)
	}
	return selected, nil
}

// LoadCrossRef reads the portal catalog. A missing file yields an empty map:
// the portal step is then skipped for every reference.
func LoadCrossRef(path string) (CrossRef, error) {
	if path == "" {
		return CrossRef{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return CrossRef{}, nil
	}
	if err != nil {
		return nil, &InventoryError{Message: err.Error(), Path: path, Cause: ErrCauseReadFailure}
	}

	var doc crossRefDTO
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InventoryError{Message: err.Error(), Path: path, Cause: ErrCauseParseFailure}
	}

	// later sheets win on duplicate ids
	sheets := make([]string, 0, len(doc.Sheets))
	for sheet := range doc.Sheets {
		sheets = append(sheets, sheet)
	}
	sort.Strings(sheets)

	xref := CrossRef{}
	for _, sheet := range sheets {
		for _, row := range doc.Sheets[sheet] {
			id := normalizeID(row.ID)
			if id == "" {
				continue
			}
			entry := CrossRefEntry{Sheet: sheet, Status: strings.TrimSpace(row.Status)}
			if u := strings.TrimSpace(row.PortalURL); strings.HasPrefix(u, "http") {
				entry.URL = u
			}
			xref[id] = entry
		}
	}
	return xref, nil
}

// numeric ids are zero-padded so they match inventory row ids
func normalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(id); err == nil && n >= 0 {
		return FormatRowID(n)
	}
	return id
}
