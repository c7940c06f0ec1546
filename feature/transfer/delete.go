package transfer

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// DeleteObject removes a single object by its full key.
func (s *Service) DeleteObject(ctx context.Context, key string) error {
	session, err := s.backend.Session(ctx)
	if err != nil {
		return err
	}
	if err := session.RequireWrite(); err != nil {
		return err
	}

	if err := session.Client.RemoveObject(ctx, session.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}

	s.log.Info("Deleted object", zap.String("key", key))
	return nil
}

// DeletePrefix removes every object under prefix and returns how many were
// deleted. An empty prefix listing is a no-op, not an error.
func (s *Service) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	session, err := s.backend.Session(ctx)
	if err != nil {
		return 0, err
	}
	if err := session.RequireWrite(); err != nil {
		return 0, err
	}

	keys, err := s.backend.ListKeys(ctx, prefix, 0)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		s.log.Info("No objects found under prefix", zap.String("prefix", prefix))
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := 0
	for removeErr := range session.Client.RemoveObjects(ctx, session.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed++
		s.log.Warn("Failed to delete object",
			zap.String("key", removeErr.ObjectName),
			zap.Error(removeErr.Err),
		)
	}

	deleted := len(keys) - failed
	if failed > 0 {
		return deleted, fmt.Errorf("failed to delete %d of %d objects under prefix %q", failed, len(keys), prefix)
	}

	s.log.Info("Deleted prefix", zap.String("prefix", prefix), zap.Int("count", deleted))
	return deleted, nil
}
