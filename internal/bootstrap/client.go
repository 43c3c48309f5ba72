package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/doc-study-gateway/internal/config"
	"github.com/kirillkom/doc-study-gateway/internal/core/ports"
	"github.com/kirillkom/doc-study-gateway/internal/core/usecase"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/cache/memory"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/gatewayclient"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/resilience"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/slot/filestore"
	"github.com/kirillkom/doc-study-gateway/internal/infrastructure/slot/redisstore"
)

// Workspace is one client session: identity, active document, artifact
// cache and the tools that fill it.
type Workspace struct {
	Config config.Config

	Gateway  *gatewayclient.Client
	Sessions *usecase.SessionService
	Docs     *usecase.DocumentRegistry
	Cache    *usecase.CacheService
	Chat     *usecase.ChatAssembler
	Tools    *usecase.ToolService

	closeFn func()
}

func NewClient(ctx context.Context, cfg config.Config) (*Workspace, error) {
	slots, closeSlots, err := openSlotStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.ClientConfig(
		cfg.ClientBreakerEnabled,
		cfg.ClientBreakerMinRequests,
		cfg.ClientBreakerFailureRatio,
		cfg.ClientBreakerOpenSeconds,
	))
	gateway := gatewayclient.New(cfg.GatewayURL, executor)

	ws := assembleWorkspace(cfg, slots, gateway)
	ws.Gateway = gateway
	ws.closeFn = closeSlots
	ws.Sessions.Restore(ctx)
	return ws, nil
}

// assembleWorkspace wires the client services around a gateway. The chat
// transcript follows every active document change.
func assembleWorkspace(cfg config.Config, slots ports.SlotStore, gateway ports.ToolGateway) *Workspace {
	cache := usecase.NewCacheService(memory.NewArtifactStore())
	docs := usecase.NewDocumentRegistry()
	chat := usecase.NewChatAssembler(cache, docs, gateway)
	docs.OnChange(chat.OnDocumentChange)

	sessions := usecase.NewSessionService(slots, cfg.SessionSlotKey, usecase.Credentials{
		Username:    cfg.AuthUsername,
		Password:    cfg.AuthPassword,
		DisplayName: cfg.AuthDisplayName,
	}, gateway, cache)

	return &Workspace{
		Config:   cfg,
		Sessions: sessions,
		Docs:     docs,
		Cache:    cache,
		Chat:     chat,
		Tools:    usecase.NewToolService(gateway, cache, docs),
	}
}

func openSlotStore(ctx context.Context, cfg config.Config) (ports.SlotStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionStore)) {
	case "", "file":
		store, err := filestore.New(cfg.SessionFileDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init session file store: %w", err)
		}
		return store, func() {}, nil
	case "redis":
		store, err := redisstore.Connect(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, nil, fmt.Errorf("init session redis store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewSlotRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

func (w *Workspace) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
