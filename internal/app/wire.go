package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	s3blob "github.com/jayasurya0007/trades-backend/internal/blob/s3"
	"github.com/jayasurya0007/trades-backend/internal/cache"
	"github.com/jayasurya0007/trades-backend/internal/clock"
	"github.com/jayasurya0007/trades-backend/internal/config"
	"github.com/jayasurya0007/trades-backend/internal/domain"
	"github.com/jayasurya0007/trades-backend/internal/generator"
	"github.com/jayasurya0007/trades-backend/internal/refdata"
	"github.com/jayasurya0007/trades-backend/internal/sequence"
	"github.com/jayasurya0007/trades-backend/internal/server/ws"
)

// Dependencies bundles everything the serving layer needs. It is constructed
// by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Sequence domain.Sequence
	RefSet   *refdata.ReferenceSet
	Cache    *cache.SnapshotCache
	Hub      *ws.Hub
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Reference data (startup-fatal when missing or malformed) ---
	refs, err := refdata.Load(cfg.RefData.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: refdata: %w", err)
	}
	if refs.Len() == 0 {
		return nil, nil, fmt.Errorf("wire: refdata: %s holds no entries: %w",
			cfg.RefData.Path, domain.ErrDataUnavailable)
	}
	deps.RefSet = refs
	logger.Info("reference data loaded",
		slog.String("path", cfg.RefData.Path),
		slog.Int("entries", refs.Len()),
	)

	// --- Durable sequence ---
	seq, err := newSequence(ctx, cfg.Sequence)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: sequence: %w", err)
	}
	closers = append(closers, func() { _ = seq.Close() })
	deps.Sequence = seq

	// --- Generator and cache ---
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gen := generator.New(generator.Config{
		BrokerPool:   cfg.Generator.BrokerPool,
		MaxQuantity:  cfg.Generator.MaxQuantity,
		MismatchRate: cfg.Generator.MismatchRate,
	}, refs, seq, clock.System{}, rng)

	deps.Cache = cache.New(gen, clock.System{},
		cfg.Cache.RefreshInterval.Duration, cfg.Generator.BatchPairs, logger)

	// --- WebSocket hub ---
	deps.Hub = ws.NewHub(logger)
	deps.Cache.OnPublish(deps.Hub.Publish)

	// --- Optional snapshot archiver ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.Endpoint,
			Region:         cfg.Archive.Region,
			Bucket:         cfg.Archive.Bucket,
			AccessKey:      cfg.Archive.AccessKey,
			SecretKey:      cfg.Archive.SecretKey,
			UseSSL:         cfg.Archive.UseSSL,
			ForcePathStyle: cfg.Archive.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Cache.OnPublish(s3blob.NewArchiver(s3Client, logger).Publish)
	}

	return deps, cleanup, nil
}

// newSequence builds the durable counter backend selected by configuration.
func newSequence(ctx context.Context, cfg config.SequenceConfig) (domain.Sequence, error) {
	switch strings.ToLower(cfg.Backend) {
	case "file":
		return sequence.NewFileSequence(cfg.Path)
	case "pebble":
		return sequence.NewPebbleSequence(cfg.Path)
	case "postgres":
		return sequence.NewPostgresSequence(ctx, cfg.DSN)
	case "redis":
		return sequence.NewRedisSequence(ctx, sequence.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Key:      cfg.Key,
		})
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}
