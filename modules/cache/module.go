package cache

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/storage"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/storage/redis/v3"
)

const dialTimeout = 2 * time.Second

// Config configures the cache plugin.
type Config struct {
	Enabled   bool
	RedisAddr string
	Database  int
	Prefix    string
	TTL       time.Duration
}

// PluginModule provides caching services as a mono plugin module.
// Plugins start before and stop after regular modules.
type PluginModule struct {
	container types.ServiceContainer
	storage   storage.Storage
	service   CacheService
	cfg       Config
	degraded  string
}

// Compile-time interface checks.
var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates a new cache plugin module.
func NewPluginModule(cfg Config) *PluginModule {
	if cfg.Prefix == "" {
		cfg.Prefix = "catalog:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &PluginModule{cfg: cfg}
}

// Name returns the module name.
func (m *PluginModule) Name() string {
	return "cache"
}

// Start connects to Redis. When caching is disabled or Redis cannot be
// reached the plugin serves a no-op cache so reads go straight to the database.
func (m *PluginModule) Start(_ context.Context) error {
	if !m.cfg.Enabled {
		m.degraded = "disabled by configuration"
		m.service = NewNoopCacheService()
		log.Println("[cache] Plugin started (caching disabled)")
		return nil
	}

	// gofiber/storage/redis panics when it cannot connect, so probe first.
	conn, err := net.DialTimeout("tcp", m.cfg.RedisAddr, dialTimeout)
	if err != nil {
		m.degraded = fmt.Sprintf("redis unreachable: %v", err)
		m.service = NewNoopCacheService()
		log.Printf("[cache] Warning: Redis at %s unreachable, caching disabled: %v", m.cfg.RedisAddr, err)
		return nil
	}
	_ = conn.Close()

	host, port := parseRedisAddr(m.cfg.RedisAddr)
	m.storage = redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Database: m.cfg.Database,
		PoolSize: 50,
	})
	m.service = NewCacheService(m.storage, m.cfg.Prefix, m.cfg.TTL)
	log.Printf("[cache] Connected to Redis at %s db=%d (prefix: %s, TTL: %s)", m.cfg.RedisAddr, m.cfg.Database, m.cfg.Prefix, m.cfg.TTL)
	log.Println("[cache] Plugin started")
	return nil
}

// Stop closes the Redis connection.
func (m *PluginModule) Stop(_ context.Context) error {
	if m.service != nil {
		if err := m.service.Close(); err != nil {
			log.Printf("[cache] Error closing connection: %v", err)
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	log.Println("[cache] Plugin stopped")
	return nil
}

// SetContainer sets the service container for this plugin.
func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

// Container returns the service container for this plugin.
func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Port returns the CacheService consumers use. It is nil until Start.
func (m *PluginModule) Port() CacheService {
	return m.service
}

// Health reports the Redis connection. A plugin running without Redis is
// healthy but reports its mode.
func (m *PluginModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "cache not started",
		}
	}

	if m.storage == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational (no-op)",
			Details: map[string]any{
				"mode":   "noop",
				"reason": m.degraded,
			},
		}
	}

	if _, err := m.storage.GetWithContext(ctx, "__health_check__"); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"mode":       "redis",
			"redis_addr": m.cfg.RedisAddr,
			"database":   m.cfg.Database,
			"prefix":     m.cfg.Prefix,
			"ttl":        m.cfg.TTL.String(),
		},
	}
}

// parseRedisAddr parses "host:port", defaulting to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}

	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}

	return host, port
}
