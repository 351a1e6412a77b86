package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 2000
	defaultRedisAddr      = "localhost:6379"

	defaultBoardCols           = 17
	defaultBoardRows           = 10
	defaultMaxRoomPlayers      = 8
	defaultTimeLimit           = 180
	defaultMinTimeLimit        = 30
	defaultMaxTimeLimit        = 900
	defaultMaxSpecialCount     = 20
	defaultFixedBoardTimeLimit = 120
	defaultSweepInterval       = 60
	defaultRoomTimeout         = 10
	defaultShutdownTimeout     = 30
	defaultShutdownCheck       = 5
	defaultRoomCleanupDelay    = 3

	defaultMatchMaxSize      = 8
	defaultMatchFlushDelay   = 10
	defaultMatchTimeLimit    = 300
	defaultMatchSpecialCount = 6
	defaultMatchBonusCount   = 4

	defaultRateMaxPerSecond    = 10
	defaultRateMaxPerMinute    = 60
	defaultRateBanDuration     = 60
	defaultMessageMaxPerSecond = 30

	defaultLogLevel = "info"
	defaultLogMaxMB = 10
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	Match    MatchConfig    `yaml:"match" envPrefix:"MATCH_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"HOST"`
	Port           int    `yaml:"port" env:"PORT"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS"`
}

// RedisConfig Redis 配置，Disabled 时房间快照、排行榜和历史记录都不落地
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Disabled bool   `yaml:"disabled" env:"DISABLED"`
}

// PostgresConfig 对局归档数据库，DSN 为空时不启用
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

// GameConfig 游戏配置
type GameConfig struct {
	BoardCols           int `yaml:"board_cols" env:"BOARD_COLS"`
	BoardRows           int `yaml:"board_rows" env:"BOARD_ROWS"`
	MaxRoomPlayers      int `yaml:"max_room_players" env:"MAX_ROOM_PLAYERS"`
	DefaultTimeLimit    int `yaml:"default_time_limit" env:"DEFAULT_TIME_LIMIT"`         // 秒
	MinTimeLimit        int `yaml:"min_time_limit" env:"MIN_TIME_LIMIT"`                 // 秒
	MaxTimeLimit        int `yaml:"max_time_limit" env:"MAX_TIME_LIMIT"`                 // 秒
	MaxSpecialCount     int `yaml:"max_special_count" env:"MAX_SPECIAL_COUNT"`           // 特殊格/奖励格上限
	FixedBoardTimeLimit int `yaml:"fixed_board_time_limit" env:"FIXED_BOARD_TIME_LIMIT"` // 秒
	SweepInterval       int `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`                 // 淘汰赛每隔多少秒淘汰一次
	RoomTimeout         int `yaml:"room_timeout" env:"ROOM_TIMEOUT"`                     // 房间等待超时（分钟）

	ShutdownTimeout       int `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`               // 优雅关闭最长等待（分钟）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval" env:"SHUTDOWN_CHECK_INTERVAL"` // 检查间隔（秒）
	RoomCleanupDelay      int `yaml:"room_cleanup_delay" env:"ROOM_CLEANUP_DELAY"`           // 关闭前等待（秒）
}

// MatchConfig 自动匹配配置，匹配房间固定为淘汰赛
type MatchConfig struct {
	MaxSize      int `yaml:"max_size" env:"MAX_SIZE"`       // 达到人数立即开房
	FlushDelay   int `yaml:"flush_delay" env:"FLUSH_DELAY"` // 秒
	TimeLimit    int `yaml:"time_limit" env:"TIME_LIMIT"`   // 秒
	SpecialCount int `yaml:"special_count" env:"SPECIAL_COUNT"`
	BonusCount   int `yaml:"bonus_count" env:"BONUS_COUNT"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig    `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit" envPrefix:"MESSAGE_LIMIT_"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"BAN_DURATION"` // 秒
}

// MessageLimitConfig 消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PRETTY"`
	File   string `yaml:"file" env:"FILE"`
	MaxMB  int    `yaml:"max_mb" env:"MAX_MB"`
}

// FlushDelayDuration 返回匹配等待时长
func (c *MatchConfig) FlushDelayDuration() time.Duration {
	return time.Duration(c.FlushDelay) * time.Second
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭最长等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回关闭前的等待时长
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// CellCount 返回棋盘格子总数
func (c *GameConfig) CellCount() int {
	return c.BoardCols * c.BoardRows
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load 加载配置文件，环境变量优先于文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default 返回默认配置（仍会读取环境变量）
func Default() *Config {
	var cfg Config
	_ = env.Parse(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

//nolint:gocyclo // Flat list of default assignments
func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Port, defaultPort)
	setDefault(&cfg.Server.MaxConnections, defaultMaxConnections)
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}

	g := &cfg.Game
	setDefault(&g.BoardCols, defaultBoardCols)
	setDefault(&g.BoardRows, defaultBoardRows)
	setDefault(&g.MaxRoomPlayers, defaultMaxRoomPlayers)
	setDefault(&g.DefaultTimeLimit, defaultTimeLimit)
	setDefault(&g.MinTimeLimit, defaultMinTimeLimit)
	setDefault(&g.MaxTimeLimit, defaultMaxTimeLimit)
	setDefault(&g.MaxSpecialCount, defaultMaxSpecialCount)
	setDefault(&g.FixedBoardTimeLimit, defaultFixedBoardTimeLimit)
	setDefault(&g.SweepInterval, defaultSweepInterval)
	setDefault(&g.RoomTimeout, defaultRoomTimeout)
	setDefault(&g.ShutdownTimeout, defaultShutdownTimeout)
	setDefault(&g.ShutdownCheckInterval, defaultShutdownCheck)
	setDefault(&g.RoomCleanupDelay, defaultRoomCleanupDelay)
	if g.MaxRoomPlayers < 2 {
		g.MaxRoomPlayers = 2
	}

	m := &cfg.Match
	setDefault(&m.MaxSize, defaultMatchMaxSize)
	setDefault(&m.FlushDelay, defaultMatchFlushDelay)
	setDefault(&m.TimeLimit, defaultMatchTimeLimit)
	setDefault(&m.SpecialCount, defaultMatchSpecialCount)
	setDefault(&m.BonusCount, defaultMatchBonusCount)
	if m.MaxSize < 2 {
		m.MaxSize = 2
	}

	s := &cfg.Security
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{"*"}
	}
	setDefault(&s.RateLimit.MaxPerSecond, defaultRateMaxPerSecond)
	setDefault(&s.RateLimit.MaxPerMinute, defaultRateMaxPerMinute)
	setDefault(&s.RateLimit.BanDuration, defaultRateBanDuration)
	setDefault(&s.MessageLimit.MaxPerSecond, defaultMessageMaxPerSecond)

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	setDefault(&cfg.Log.MaxMB, defaultLogMaxMB)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
