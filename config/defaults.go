// =============================================================================
// 📦 ModFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Database:   DefaultDatabaseConfig(),
		Redis:      DefaultRedisConfig(),
		Mongo:      DefaultMongoConfig(),
		Classifier: DefaultClassifierConfig(),
		Moderation: DefaultModerationConfig(),
		Auth:       DefaultAuthConfig(),
		Log:        DefaultLogConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimit:       50,
		RateBurst:       100,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Name:            "modflow.db",
		MaxIdleConns:    5,
		MaxOpenConns:    25,
		ConnMaxLifetime: time.Hour,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  false,
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
	}
}

// DefaultMongoConfig 返回默认归档配置
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		Enabled:    false,
		URI:        "mongodb://localhost:27017",
		Database:   "modflow",
		Collection: "webhook_payloads",
	}
}

// DefaultClassifierConfig 返回默认分类服务商配置
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BaseURL:           "https://api.thehive.ai",
		Model:             "moderation-latest",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
	}
}

// DefaultModerationConfig 返回默认审核核心配置
func DefaultModerationConfig() ModerationConfig {
	return ModerationConfig{
		PolicyTTL:        60 * time.Second,
		MetricsNamespace: "modflow",
	}
}

// DefaultAuthConfig 返回默认鉴权配置。
// 默认关闭以便本地起服务；生产配置必须开启并提供 jwt_secret。
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled: false,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}
