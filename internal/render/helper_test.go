package render_test

import (
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
)

type metadataSinkMock struct {
	errorCauses []metadata.ErrorCause
	artifacts   []string
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorCauses = append(m.errorCauses, cause)
}

func (m *metadataSinkMock) RecordFetch(string, int, time.Duration, string, int) {}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.artifacts = append(m.artifacts, path)
}

func (m *metadataSinkMock) RecordOutcome(string, string, string, int, int) {}

const capturedPage = `<!DOCTYPE html>
<html>
<head><title>PI-20-01 Title IV-E Guidance</title><script>var tracking = true;</script></head>
<body>
<header><a href="/">Home</a> <a href="/about">About</a></header>
<nav><ul><li><a href="/a">Programs</a></li><li><a href="/b">Grants</a></li></ul></nav>
<main>
<h1>Program Instruction PI-20-01</h1>
<p>This program instruction informs title IV-E agencies of the requirements for reporting.</p>
<table><tr><th>Item</th><th>Due</th></tr><tr><td>Report</td><td>March 1</td></tr></table>
</main>
<footer>Privacy policy and accessibility statement</footer>
</body>
</html>`
