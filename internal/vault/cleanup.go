package vault

import "context"

// Cleanup removes every expired or unparsable item and returns how many
// were removed. Each call enumerates the store afresh, so concurrent
// calls are safe.
func (v *Vault) Cleanup(ctx context.Context) int {
	removed := 0
	for _, key := range v.Keys("") {
		if ctx.Err() != nil {
			break
		}
		if v.sweepKey(key) {
			removed++
		}
	}
	v.metrics.sweeps.Inc()
	if removed > 0 {
		v.log.Debug().Int("removed", removed).Msg("cleanup sweep finished")
	}
	return removed
}

func (v *Vault) sweepKey(key string) bool {
	unlock := v.keys.lock(key)
	defer unlock()

	raw, found, err := v.store.GetItem(key)
	if err != nil {
		v.log.Error().Err(err).Str("key", key).Msg("failed to read item during cleanup")
		return false
	}
	if !found {
		return false
	}

	item, err := parseItem(raw)
	if err != nil {
		v.purge(key, reasonCorrupt, &CorruptionError{Key: key, Err: err})
		return true
	}
	if item.Expired(v.clock.Now(), v.sessionTimeout) {
		v.purge(key, reasonExpired, nil)
		return true
	}
	return false
}

// Start runs a cleanup sweep and then keeps sweeping every sweep interval
// until Stop is called or ctx is cancelled. Calling Start on a running
// vault does nothing.
func (v *Vault) Start(ctx context.Context) {
	v.lifecycle.Lock()
	defer v.lifecycle.Unlock()

	if v.stopSweep != nil {
		return
	}

	v.Cleanup(ctx)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.stopSweep = cancel
	v.sweepDone = done

	go v.sweepLoop(ctx, v.newTicker(v.sweepInterval), done)
	v.log.Debug().Dur("interval", v.sweepInterval).Msg("vault sweeper started")
}

func (v *Vault) sweepLoop(ctx context.Context, ticker Ticker, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			v.Cleanup(ctx)
		}
	}
}

// Stop ends the periodic sweep and runs one final best-effort cleanup.
// Calling Stop on a vault that is not running only runs the cleanup.
func (v *Vault) Stop() {
	v.lifecycle.Lock()
	if v.stopSweep != nil {
		v.stopSweep()
		<-v.sweepDone
		v.stopSweep = nil
		v.sweepDone = nil
		v.log.Debug().Msg("vault sweeper stopped")
	}
	v.lifecycle.Unlock()

	v.Cleanup(context.Background())
}

// Close stops the sweeper, runs the final cleanup and wipes the passphrase
// from memory. Encrypted items can no longer be written or read afterwards.
func (v *Vault) Close() {
	v.Stop()
	v.sealer.Destroy()
}
