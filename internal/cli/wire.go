package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/rohmanhakim/docs-harvester/internal/archive"
	"github.com/rohmanhakim/docs-harvester/internal/build"
	"github.com/rohmanhakim/docs-harvester/internal/config"
	"github.com/rohmanhakim/docs-harvester/internal/fetcher"
	"github.com/rohmanhakim/docs-harvester/internal/logger"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/render"
	"github.com/rohmanhakim/docs-harvester/internal/resolver"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/rohmanhakim/docs-harvester/pkg/limiter"
	"github.com/rohmanhakim/docs-harvester/pkg/retry"
	"github.com/rohmanhakim/docs-harvester/pkg/timeutil"
	"github.com/rs/zerolog"
)

// harvester is the resolver with every collaborator the config asks for.
type harvester struct {
	resolver *resolver.Resolver
	closers  []func() error
}

func (h *harvester) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newHarvester(ctx context.Context, cfg config.Config, log zerolog.Logger) (*harvester, error) {
	h := &harvester{}
	metadataSink := metadata.NewLogSink(logger.Component(log, "metadata"))

	backoffParam := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())
	rateLimiter.SetBackoffParam(backoffParam)

	client := fetcher.NewHttpClient(metadataSink, rateLimiter, fetcher.ClientParam{
		UserAgent:    cfg.UserAgent(),
		Timeout:      cfg.Timeout(),
		MaxBodyBytes: cfg.MaxBodyBytes(),
		RetryParam: retry.NewRetryParam(
			cfg.BaseDelay(),
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			backoffParam,
		),
	})

	indexURL, err := url.Parse(cfg.ArchiveIndexURL())
	if err != nil {
		return nil, fmt.Errorf("%w: archive index url: %s", config.ErrInvalidConfig, err.Error())
	}
	index := archive.NewCDXIndex(client, *indexURL, archive.NewMemoryCache(), metadataSink)

	livePolicy := fetcher.NewLinkPolicy(fetcher.DocumentExtensions, fetcher.SiteFurniture, cfg.MaxLinksPerPage())
	sources := resolver.Sources{
		Portal: fetcher.NewLiveFetcher(client, record.SourcePortal, fetcher.FetcherParam{
			Policy:          livePolicy,
			LinkConcurrency: cfg.LinkConcurrency(),
		}),
		Direct: fetcher.NewLiveFetcher(client, record.SourceDirect, fetcher.FetcherParam{
			Policy:          livePolicy,
			LinkConcurrency: cfg.LinkConcurrency(),
		}),
		Archive: fetcher.NewArchiveFetcher(client, index, fetcher.ArchiveParam{
			FetcherParam: fetcher.FetcherParam{
				Policy:          fetcher.NewLinkPolicy(fetcher.ArchiveExtensions, fetcher.SiteFurniture, cfg.MaxLinksPerPage()),
				LinkConcurrency: cfg.LinkConcurrency(),
			},
			SnapshotBase:       cfg.ArchiveSnapshotURL(),
			AccessControlHosts: cfg.AccessControlHosts(),
		}),
	}

	v := validator.New(validator.DefaultRules().WithMinTextChars(cfg.MinTextChars()))
	sink := storage.NewLocalSink(metadataSink, cfg.OutputDir(), cfg.HashAlgo(), record.MetadataFilename)

	res := resolver.NewResolver(
		sources,
		v,
		sink,
		metadataSink,
		logger.Component(log, "resolver"),
		resolver.NewParam(cfg.ArchiveDirectURLs(), cfg.ArchiveMaxVariants(), build.FullVersion()),
	)

	store, err := h.newStore(ctx, cfg)
	if err != nil {
		h.Close()
		return nil, err
	}

	var renderer resolver.Renderer
	if cfg.Render() {
		renderer = render.NewRenderer(metadataSink)
	}

	mirror, err := h.newMirror(ctx, cfg)
	if err != nil {
		h.Close()
		return nil, err
	}

	h.resolver = res.WithOutputs(store, renderer, mirror)
	return h, nil
}

func (h *harvester) newStore(ctx context.Context, cfg config.Config) (record.Store, error) {
	switch cfg.RecordBackend() {
	case config.RecordBackendFirestore:
		client, err := record.NewFirestoreClient(ctx, cfg.FirestoreProject())
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		h.closers = append(h.closers, client.Close)
		return record.NewFirestoreStore(client, cfg.FirestoreCollection()), nil
	default:
		return record.NewLocalStore(cfg.OutputDir()), nil
	}
}

// newMirror returns a nil Mirror when mirroring is off.
func (h *harvester) newMirror(ctx context.Context, cfg config.Config) (storage.Mirror, error) {
	switch cfg.MirrorBackend() {
	case config.MirrorBackendGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		h.closers = append(h.closers, client.Close)
		return storage.NewGCSMirror(client, cfg.MirrorBucket()), nil
	case config.MirrorBackendMinio:
		mirror, err := storage.NewMinioMirror(ctx, storage.MinioParam{
			Endpoint:  cfg.MinioEndpoint(),
			AccessKey: cfg.MinioAccessKey(),
			SecretKey: cfg.MinioSecretKey(),
			UseSSL:    cfg.MinioUseSSL(),
			Bucket:    cfg.MirrorBucket(),
		})
		if err != nil {
			return nil, fmt.Errorf("minio mirror: %w", err)
		}
		return mirror, nil
	default:
		return nil, nil
	}
}
