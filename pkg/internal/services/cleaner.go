package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// DoStaleSessionCleanup sweeps session records whose backing room has expired.
// Every access path already reconciles lazily, so this only shortens how long
// stale records linger between visits.
func DoStaleSessionCleanup() {
	ctx := context.Background()

	lctx, cancel := Co.bound(ctx)
	defer cancel()

	sessions, err := Co.store.List(lctx)
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when listing sessions for cleanup...")
		return
	}

	var count int64
	for _, session := range sessions {
		if _, err := Co.ResolveSession(ctx, session.ID); errors.Is(err, ErrNotFound) {
			count++
		}
	}

	log.Debug().Int64("affected", count).Msg("Clean up stale sessions accomplished.")
}
