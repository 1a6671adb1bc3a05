package service

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math/rand/v2"

	"github.com/bwmarrin/snowflake"
	"github.com/thrivekit/thrivekit/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeInUse reports whether code is claimed by any code-bearing entity
// other than the implementation itself. It runs in a nested
// transaction (a savepoint inside the caller's transaction): releasing
// a savepoint does not release locks acquired under it, so every row
// lock taken here persists for the rest of the outer transaction,
// which is exactly what serializes concurrent checkers of the same
// code.
func (s *service) codeInUse(ctx context.Context, tx *gorm.DB, code string, selfID snowflake.ID, contractID *snowflake.ID, checkInternally bool) (bool, error) {
	inUse := false

	err := tx.Transaction(func(nested *gorm.DB) error {
		repo := s.repo.WithTx(nested)

		// Taken regardless of checkInternally so every caller on this
		// code path waits on the same lock. With zero matching rows
		// there is nothing to lock yet; once the unique index has let
		// exactly one row through, all later checkers queue here.
		if err := repo.LockImplementationCodes(ctx, code); err != nil {
			return err
		}

		conflicts := []func() (int64, error){
			func() (int64, error) { return repo.CountSegmentConflicts(ctx, code, contractID) },
			func() (int64, error) { return repo.CountContractConflicts(ctx, code, contractID) },
			func() (int64, error) { return repo.CountVanityURLConflicts(ctx, code, contractID) },
		}
		if checkInternally {
			conflicts = append(conflicts, func() (int64, error) {
				return repo.CountImplementationsByCode(ctx, code, selfID)
			})
		}

		for _, count := range conflicts {
			n, err := count()
			if err != nil {
				return err
			}
			if n > 0 {
				inUse = true
				return nil
			}
		}
		return nil
	})

	return inUse, err
}

// uniqueCodeFor finds a free code starting from original: the original
// as-is, then bounded retries with a random numeric suffix, then a
// dated high-entropy fallback that is alerted on but not re-verified.
func (s *service) uniqueCodeFor(ctx context.Context, tx *gorm.DB, original string, selfID snowflake.ID, contractID *snowflake.ID) (string, error) {
	cfg := s.signupCfg.Current()

	generated := original
	attempts := 0
	for {
		inUse, err := s.codeInUse(ctx, tx, generated, selfID, contractID, true)
		if err != nil {
			return "", err
		}
		attempts++
		if !inUse {
			metrics.CodeGenerationAttempts.Observe(float64(attempts))
			return generated, nil
		}
		if attempts > cfg.CodeMaxAttempts {
			break
		}
		generated = fmt.Sprintf("%s-%d", original, rand.IntN(cfg.CodeSuffixRange))
	}
	metrics.CodeGenerationAttempts.Observe(float64(attempts))
	metrics.CodeFallbacksTotal.Inc()

	// Last resort: pick something very unlikely to be taken.
	fallback := fmt.Sprintf("%s-%s", s.clock.Now().Format("2006-01-02"), randomHex(8))

	s.log.Warn("code generation exhausted retries",
		zap.String("original", original),
		zap.String("fallback", fallback))
	if err := s.alerts.Notice(ctx,
		fmt.Sprintf("Failed to generate an available implementation code after %d attempts", cfg.CodeMaxAttempts),
		fmt.Sprintf("Code %q and all suffixed candidates are taken. Falling back to %q", original, fallback),
	); err != nil {
		s.log.Error("alert delivery failed", zap.Error(err))
	}

	return fallback, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; there is
		// no meaningful recovery for a code suffix.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
