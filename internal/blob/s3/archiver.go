package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// putTimeout bounds a single snapshot upload.
const putTimeout = 30 * time.Second

// Archiver uploads each published snapshot as a JSON object, keyed by
// generation date and snapshot ID, e.g.
// snapshots/2026-08-28/9f1c...-....json.
type Archiver struct {
	client *Client
	logger *slog.Logger
}

// NewArchiver creates an Archiver writing to the client's bucket.
func NewArchiver(client *Client, logger *slog.Logger) *Archiver {
	return &Archiver{
		client: client,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// Publish uploads the snapshot. It is registered as a cache publish hook;
// failures are logged and never propagate into the serving path.
func (a *Archiver) Publish(snap *domain.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	if err := a.Archive(ctx, snap); err != nil {
		a.logger.Error("snapshot archive failed",
			slog.String("snapshot_id", snap.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Archive serializes the snapshot and uploads it with a single PutObject.
func (a *Archiver) Archive(ctx context.Context, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot %s: %w", snap.ID, err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json",
		snap.GeneratedAt.UTC().Format("2006-01-02"), snap.ID)

	_, err = a.client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put snapshot %s: %w", key, err)
	}

	a.logger.Info("snapshot archived",
		slog.String("key", key),
		slog.Int("bytes", len(data)),
	)
	return nil
}
