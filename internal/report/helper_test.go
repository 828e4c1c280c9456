package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/stretchr/testify/require"
)

func successRecord(id string, office string, source record.Source, sizes ...int64) record.DocumentRecord {
	rec := record.New(id)
	rec.Office = office
	rec.Status = record.StatusSuccess
	rec.SourceUsed = source
	rec.RunID = "run-1"
	for i, size := range sizes {
		rec.Files = append(rec.Files, record.ArtifactFile{Filename: id + string(rune('a'+i)) + ".pdf", Size: size, Source: source})
		rec.Attempts = append(rec.Attempts, record.FetchAttempt{Source: source, Outcome: record.OutcomeAccepted, Reason: validator.ReasonOK})
	}
	return rec
}

func failedRecord(id string, office string, status record.Status, reasons ...validator.Reason) record.DocumentRecord {
	rec := record.New(id)
	rec.Office = office
	rec.Status = status
	rec.RunID = "run-1"
	for _, reason := range reasons {
		rec.Attempts = append(rec.Attempts, record.FetchAttempt{Source: record.SourceDirect, Outcome: record.OutcomeRejected, Reason: reason})
	}
	rec.Attempts = append(rec.Attempts, record.FetchAttempt{Source: record.SourceArchive, Outcome: record.OutcomeNoSnapshot})
	return rec
}

func writeFile(t *testing.T, dir string, name string, body []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), body, 0644))
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n" + strings.Repeat("0", 600))
}

func denialPage() []byte {
	return []byte("<html><head><title>Access Denied</title></head><body><h1>Access Denied</h1><p>You don't have permission to access this resource on this server.</p>" +
		strings.Repeat("<p>Reference #18.2f4e</p>", 5) + "</body></html>")
}
