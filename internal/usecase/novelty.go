package usecase

import (
	"log/slog"

	"github.com/FlakM/czujka-librus/internal/domain"
)

// SelectNew returns the candidates whose identity is absent from the known
// set, preserving source order. Candidates that cannot produce an identity
// are logged at warn and dropped from both sides of the partition. The
// function is pure apart from logging: the same inputs always yield the
// same novel set.
func SelectNew[R domain.Record](logger *slog.Logger, known map[string]struct{}, candidates []R) []R {
	fresh := make([]R, 0, len(candidates))
	for _, c := range candidates {
		key, err := c.Key()
		if err != nil {
			logger.Warn("record missing required fields, skipping",
				"stream", c.Stream(), "error", err)
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}
