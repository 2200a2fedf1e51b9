package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/catalog"
)

// ConfigState is a loaded configuration and its revision.
type ConfigState struct {
	Config   domain.Config
	Revision uint64
	LoadedAt time.Time
}

// ConfigUpdate is broadcast when a reload produces a different configuration.
type ConfigUpdate struct {
	Snapshot ConfigState
	Diff     domain.ConfigDiff
}

// ConfigProvider holds the current configuration and reloads it when the
// file changes on disk.
type ConfigProvider struct {
	logger     *zap.Logger
	loader     *catalog.Loader
	configPath string
	debounce   time.Duration
	watchCtx   context.Context
	watchOnce  sync.Once

	// reloadMu serializes loads; mu guards current and subs.
	reloadMu sync.Mutex
	mu       sync.RWMutex
	current  ConfigState
	subs     map[chan ConfigUpdate]struct{}
}

func NewConfigProvider(ctx context.Context, cfg ServeConfig, logging LoggingConfig) (*ConfigProvider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := catalog.NewLoader(logger)
	config, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	debounce := cfg.ReloadDebounce
	if debounce <= 0 {
		debounce = domain.DefaultConfigReloadDebounceMillis * time.Millisecond
	}
	return &ConfigProvider{
		logger:     logger.Named("config_provider"),
		loader:     loader,
		configPath: cfg.ConfigPath,
		debounce:   debounce,
		watchCtx:   ctx,
		current:    ConfigState{Config: config, Revision: 1, LoadedAt: time.Now()},
		subs:       make(map[chan ConfigUpdate]struct{}),
	}, nil
}

func (p *ConfigProvider) Snapshot(ctx context.Context) (ConfigState, error) {
	if ctx != nil && ctx.Err() != nil {
		return ConfigState{}, ctx.Err()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, nil
}

// Watch subscribes to configuration updates until ctx is done. The file
// watcher starts with the first subscriber; without a config path there is
// nothing to watch.
func (p *ConfigProvider) Watch(ctx context.Context) (<-chan ConfigUpdate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan ConfigUpdate, 1)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	if p.configPath != "" {
		p.watchOnce.Do(func() { go p.watchFile(p.watchCtx) })
	}
	context.AfterFunc(ctx, func() {
		p.mu.Lock()
		delete(p.subs, ch)
		p.mu.Unlock()
	})
	return ch, nil
}

// Reload rereads the config file. Invalid files leave the current state
// in place; an unchanged file does not bump the revision.
func (p *ConfigProvider) Reload(ctx context.Context) error {
	if p.configPath == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	config, err := p.loader.Load(ctx, p.configPath)
	if err != nil {
		return err
	}

	p.mu.Lock()
	diff := domain.DiffConfigs(p.current.Config, config)
	if diff.IsEmpty() {
		p.mu.Unlock()
		return nil
	}
	p.current = ConfigState{Config: config, Revision: p.current.Revision + 1, LoadedAt: time.Now()}
	update := ConfigUpdate{Snapshot: p.current, Diff: diff}
	for ch := range p.subs {
		// Each subscriber holds at most the newest update.
		select {
		case <-ch:
		default:
		}
		ch <- update
	}
	p.mu.Unlock()
	return nil
}

func (p *ConfigProvider) watchFile(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("config watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	// Editors replace files by rename, so the directory is watched.
	dir := filepath.Dir(p.configPath)
	if err := watcher.Add(dir); err != nil {
		p.logger.Warn("config watcher add failed", zap.String("path", dir), zap.Error(err))
		return
	}

	due := make(chan struct{}, 1)
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("config watcher error", zap.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !p.isConfigWrite(event) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(p.debounce, func() {
				select {
				case due <- struct{}{}:
				default:
				}
			})
		case <-due:
			if err := p.Reload(ctx); err != nil {
				p.logger.Warn("config reload failed", zap.String("path", p.configPath), zap.Error(err))
			}
		}
	}
}

func (p *ConfigProvider) isConfigWrite(event fsnotify.Event) bool {
	if event.Name == "" || event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(p.configPath)
}
