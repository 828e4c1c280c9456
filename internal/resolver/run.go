package resolver

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/docs-harvester/internal/inventory"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/render"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
	"golang.org/x/sync/errgroup"
)

type Renderer interface {
	RenderFile(capturePath string) (render.Result, failure.ClassifiedError)
}

type RunOptions struct {
	// Resume skips references whose stored record is already success.
	Resume bool
	// DryRun previews references without network access or writes. The
	// returned records stay pending.
	DryRun      bool
	Concurrency int
	// RunID defaults to a fresh UUID.
	RunID string
	// Render turns accepted HTML pages into Markdown and print HTML.
	Render bool
	// MirrorPrefix prefixes object names in the mirror bucket.
	MirrorPrefix string
}

// WithOutputs attaches the collaborators Run hands finished records to.
// Any of them may be nil.
func (r *Resolver) WithOutputs(store record.Store, renderer Renderer, mirror storage.Mirror) *Resolver {
	r.store = store
	r.renderer = renderer
	r.mirror = mirror
	return r
}

// Run resolves refs with bounded parallelism and returns the records that
// finished, in input order. References still in flight when ctx ends are
// abandoned without persisting anything.
func (r *Resolver) Run(
	ctx context.Context,
	refs []inventory.Reference,
	xref inventory.CrossRef,
	opts RunOptions,
) ([]record.DocumentRecord, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	r.log.Info().
		Str("run_id", runID).
		Int("references", len(refs)).
		Int("concurrency", concurrency).
		Bool("resume", opts.Resume).
		Bool("dry_run", opts.DryRun).
		Msg("run started")

	results := make([]record.DocumentRecord, len(refs))
	finished := make([]bool, len(refs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec, ok := r.runOne(ctx, ref, xref, opts, runID)
			results[i] = rec
			finished[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	records := make([]record.DocumentRecord, 0, len(refs))
	for i := range results {
		if finished[i] {
			records = append(records, results[i])
		}
	}

	r.log.Info().
		Str("run_id", runID).
		Int("finished", len(records)).
		Int("abandoned", len(refs)-len(records)).
		Msg("run finished")
	return records, ctx.Err()
}

func (r *Resolver) runOne(
	ctx context.Context,
	ref inventory.Reference,
	xref inventory.CrossRef,
	opts RunOptions,
	runID string,
) (record.DocumentRecord, bool) {
	if ctx.Err() != nil {
		return record.DocumentRecord{}, false
	}

	if opts.DryRun {
		return r.preview(ref, xref, runID), true
	}

	if opts.Resume && r.store != nil {
		stored, found, err := r.store.Load(ctx, ref.ID)
		if err != nil {
			r.log.Warn().Err(err).Str("ref_id", ref.ID).Msg("stored record unreadable, resolving again")
		}
		if found && stored.Status == record.StatusSuccess {
			r.log.Info().Str("ref_id", ref.ID).Msg("already harvested, skipping")
			return stored, true
		}
	}

	rec := r.Resolve(ctx, ref, xref)
	if ctx.Err() != nil {
		r.log.Warn().Str("ref_id", ref.ID).Msg("interrupted, nothing persisted")
		return record.DocumentRecord{}, false
	}
	rec.RunID = runID

	if opts.Render && r.renderer != nil && rec.Status == record.StatusSuccess {
		r.renderCaptures(&rec)
	}

	if r.store != nil {
		if err := r.store.Save(ctx, rec); err != nil {
			r.metadataSink.RecordError(
				time.Now(),
				"resolver",
				"Resolver.Run",
				metadata.CauseStorageFailure,
				err.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrRefID, rec.RefID)},
			)
			r.log.Error().Err(err).Str("ref_id", rec.RefID).Msg("record not persisted")
		}
	}

	if r.mirror != nil && rec.Status == record.StatusSuccess {
		storage.MirrorFiles(ctx, r.mirror, r.metadataSink, opts.MirrorPrefix, rec.RefID, r.mirrorPaths(rec))
	}

	r.metadataSink.RecordOutcome(rec.RefID, string(rec.Status), string(rec.SourceUsed), len(rec.Attempts), len(rec.Files))
	event := r.log.Info()
	if rec.Status != record.StatusSuccess {
		event = r.log.Warn()
		if last, ok := rec.LastRejection(); ok {
			event = event.Str("reason", string(last.Reason))
		}
	}
	event.
		Str("ref_id", rec.RefID).
		Str("status", string(rec.Status)).
		Str("source", string(rec.SourceUsed)).
		Int("attempts", len(rec.Attempts)).
		Int("files", len(rec.Files)).
		Msg("reference resolved")
	return rec, true
}

func (r *Resolver) preview(ref inventory.Reference, xref inventory.CrossRef, runID string) record.DocumentRecord {
	rec := r.open(ref, xref)
	rec.RunID = runID
	r.log.Info().
		Str("ref_id", ref.ID).
		Int("urls", len(ref.URLs)).
		Bool("portal", rec.PortalURL != "").
		Msg("dry run")
	return rec
}

// renderCaptures renders every accepted page. Failures are logged; the
// status stays as it is.
func (r *Resolver) renderCaptures(rec *record.DocumentRecord) {
	dir := r.sink.Dir(rec.RefID)
	for i, file := range rec.Files {
		if !file.NeedsRendering {
			continue
		}
		result, err := r.renderer.RenderFile(filepath.Join(dir, file.Filename))
		if err != nil {
			r.log.Warn().Err(err).Str("ref_id", rec.RefID).Str("file", file.Filename).Msg("render failed")
			continue
		}
		rec.Files[i].Rendered = []string{
			filepath.Base(result.MarkdownPath),
			filepath.Base(result.PrintHTMLPath),
		}
	}
}

func (r *Resolver) mirrorPaths(rec record.DocumentRecord) []string {
	dir := r.sink.Dir(rec.RefID)
	var paths []string
	for _, file := range rec.Files {
		paths = append(paths, filepath.Join(dir, file.Filename))
		for _, rendered := range file.Rendered {
			paths = append(paths, filepath.Join(dir, rendered))
		}
	}
	if metadataPath := filepath.Join(dir, record.MetadataFilename); fileutil.FileExists(metadataPath) {
		paths = append(paths, metadataPath)
	}
	return paths
}
