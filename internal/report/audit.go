package report

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/render"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
)

// AuditEntry is one stored file that no longer passes validation.
type AuditEntry struct {
	RefID   string            `json:"ref_id"`
	File    string            `json:"file"`
	Reason  validator.Reason  `json:"reason"`
	Details validator.Details `json:"details"`
}

type AuditReport struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	OutputDir    string         `json:"output_dir"`
	References   int            `json:"references"`
	Valid        int            `json:"valid"`
	Invalid      int            `json:"invalid"`
	Empty        int            `json:"empty"`
	FilesChecked int            `json:"files_checked"`
	ReasonCounts map[string]int `json:"reason_counts"`
	Findings     []AuditEntry   `json:"findings,omitempty"`
}

// Audit re-validates every stored artifact under outputDir with the default
// rules.
func Audit(outputDir string) (AuditReport, error) {
	return AuditWith(validator.New(validator.DefaultRules()), outputDir)
}

// AuditWith walks each reference directory and validates its artifacts. A
// reference is valid when it holds at least one artifact and all of them
// pass. The record file and rendered companions are not artifacts.
func AuditWith(v *validator.Validator, outputDir string) (AuditReport, error) {
	report := AuditReport{
		GeneratedAt:  time.Now().UTC(),
		OutputDir:    outputDir,
		ReasonCounts: make(map[string]int),
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return AuditReport{}, &ReportError{Message: err.Error(), Cause: ErrCauseReadFailure, Path: outputDir}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		refID := entry.Name()
		files, err := artifactFiles(filepath.Join(outputDir, refID))
		if err != nil {
			return AuditReport{}, err
		}

		report.References++
		if len(files) == 0 {
			report.Empty++
			continue
		}

		valid := true
		for _, file := range files {
			report.FilesChecked++
			outcome := v.ValidateFile(filepath.Join(outputDir, refID, file))
			report.ReasonCounts[string(outcome.Reason)]++
			if !outcome.Accepted {
				valid = false
				report.Findings = append(report.Findings, AuditEntry{
					RefID:   refID,
					File:    file,
					Reason:  outcome.Reason,
					Details: outcome.Details,
				})
			}
		}
		if valid {
			report.Valid++
		} else {
			report.Invalid++
		}
	}
	return report, nil
}

func artifactFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ReportError{Message: err.Error(), Cause: ErrCauseReadFailure, Path: dir}
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !isArtifact(name) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func isArtifact(name string) bool {
	if name == record.MetadataFilename {
		return false
	}
	return !strings.HasSuffix(name, render.PrintHTMLExt) && !strings.HasSuffix(name, render.MarkdownExt)
}
