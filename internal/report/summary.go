package report

import (
	"sort"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/record"
)

/*
The report package reduces finished records into run-level views. It only
reads records; nothing here feeds back into resolution.
*/

type OfficeTally struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}

type Summary struct {
	RunID          string                 `json:"run_id,omitempty"`
	GeneratedAt    time.Time              `json:"generated_at"`
	ElapsedSeconds float64                `json:"elapsed_seconds"`
	Total          int                    `json:"total"`
	SuccessRate    float64                `json:"success_rate"`
	ByStatus       map[string]int         `json:"by_status"`
	BySource       map[string]int         `json:"by_source"`
	ByOffice       map[string]OfficeTally `json:"by_office"`
	ByReason       map[string]int         `json:"by_reason"`
	Failed         []string               `json:"failed,omitempty"`
}

// UnknownOffice buckets references without an office.
const UnknownOffice = "unknown"

// Summarize tallies records per status, per source used, per office and per
// rejection reason. Reasons count every rejected attempt, so one reference
// may contribute several.
func Summarize(records []record.DocumentRecord, elapsed time.Duration) Summary {
	s := Summary{
		GeneratedAt:    time.Now().UTC(),
		ElapsedSeconds: elapsed.Seconds(),
		Total:          len(records),
		ByStatus:       make(map[string]int, len(record.Statuses)),
		BySource:       make(map[string]int),
		ByOffice:       make(map[string]OfficeTally),
		ByReason:       make(map[string]int),
	}
	for _, status := range record.Statuses {
		s.ByStatus[string(status)] = 0
	}

	for _, rec := range records {
		if s.RunID == "" {
			s.RunID = rec.RunID
		}
		s.ByStatus[string(rec.Status)]++
		if rec.SourceUsed != "" {
			s.BySource[string(rec.SourceUsed)]++
		}

		office := rec.Office
		if office == "" {
			office = UnknownOffice
		}
		tally := s.ByOffice[office]
		tally.Total++
		if rec.Status == record.StatusSuccess {
			tally.Success++
		}
		s.ByOffice[office] = tally

		for _, attempt := range rec.Attempts {
			if attempt.Outcome == record.OutcomeRejected && attempt.Reason != "" {
				s.ByReason[string(attempt.Reason)]++
			}
		}

		if rec.Status != record.StatusSuccess && rec.Status != record.StatusPending {
			s.Failed = append(s.Failed, rec.RefID)
		}
	}
	sort.Strings(s.Failed)

	if s.Total > 0 {
		s.SuccessRate = float64(s.ByStatus[string(record.StatusSuccess)]) / float64(s.Total)
	}
	return s
}
