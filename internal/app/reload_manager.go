package app

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/gateway"
	"wpmcp/internal/infra/telemetry"
)

// ReloadManager applies configuration updates to the running server. Only
// the auth section is applied live; other sections need a restart.
type ReloadManager struct {
	provider *ConfigProvider
	authn    *gateway.Authenticator
	logger   *zap.Logger

	// applyMu serializes applies; mu guards the fields below it.
	applyMu sync.Mutex
	mu      sync.Mutex
	started bool
	applied uint64
	config  domain.Config
	// advanced is closed and replaced each time applied moves forward.
	advanced chan struct{}
	pending  []string
}

func NewReloadManager(provider *ConfigProvider, authn *gateway.Authenticator, logger *zap.Logger) *ReloadManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadManager{
		provider: provider,
		authn:    authn,
		logger:   logger.Named("reload"),
		advanced: make(chan struct{}),
	}
}

// Start subscribes to configuration updates and applies them until ctx is
// canceled.
func (m *ReloadManager) Start(ctx context.Context) error {
	updates, err := m.provider.Watch(ctx)
	if err != nil {
		return err
	}
	snapshot, err := m.provider.Snapshot(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.started = true
	m.config = snapshot.Config
	m.advanceLocked(snapshot.Revision)
	m.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				m.applyLatest(ctx)
			}
		}
	}()
	return nil
}

// Reload rereads the config file and, once started, waits until the
// resulting revision has been applied. The file watcher may deliver the
// same change first.
func (m *ReloadManager) Reload(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := m.provider.Reload(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return nil
	}
	snapshot, err := m.provider.Snapshot(ctx)
	if err != nil {
		return err
	}
	return m.waitFor(ctx, snapshot.Revision)
}

// AppliedRevision returns the newest config revision the server runs with.
func (m *ReloadManager) AppliedRevision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied
}

// PendingRestart lists the config sections changed on disk since startup
// that only take effect after a restart.
func (m *ReloadManager) PendingRestart() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pending)
}

// applyLatest applies the provider's current snapshot, diffed against the
// config last applied, so updates coalesced by the provider are not lost.
func (m *ReloadManager) applyLatest(ctx context.Context) {
	snapshot, err := m.provider.Snapshot(ctx)
	if err != nil {
		return
	}

	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.mu.Lock()
	stale := snapshot.Revision <= m.applied
	diff := domain.DiffConfigs(m.config, snapshot.Config)
	m.mu.Unlock()
	if stale {
		return
	}
	if diff.IsEmpty() {
		m.mu.Lock()
		m.advanceLocked(snapshot.Revision)
		m.mu.Unlock()
		return
	}
	m.applyUpdate(ConfigUpdate{Snapshot: snapshot, Diff: diff})
}

func (m *ReloadManager) applyUpdate(update ConfigUpdate) {
	if update.Diff.AuthChanged && m.authn != nil {
		m.authn.Update(update.Snapshot.Config.Auth)
	}

	m.mu.Lock()
	var added []string
	for _, section := range update.Diff.RestartSections {
		if !slices.Contains(m.pending, section) {
			m.pending = append(m.pending, section)
			added = append(added, section)
		}
	}
	m.config = update.Snapshot.Config
	m.advanceLocked(update.Snapshot.Revision)
	m.mu.Unlock()

	if len(added) > 0 {
		m.logger.Warn("config changes require a restart to apply", zap.Strings("sections", added))
	}
	m.logger.Info("config reload applied",
		telemetry.EventField(telemetry.EventConfigReloaded),
		zap.Uint64("revision", update.Snapshot.Revision),
		zap.Bool("auth", update.Diff.AuthChanged),
		zap.Int("tokens", len(update.Snapshot.Config.Auth.Tokens)),
	)
}

func (m *ReloadManager) advanceLocked(revision uint64) {
	if revision <= m.applied {
		return
	}
	m.applied = revision
	close(m.advanced)
	m.advanced = make(chan struct{})
}

func (m *ReloadManager) waitFor(ctx context.Context, revision uint64) error {
	for {
		m.mu.Lock()
		applied, advanced := m.applied, m.advanced
		m.mu.Unlock()
		if applied >= revision {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-advanced:
		}
	}
}
