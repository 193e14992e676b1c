package common

import (
	"github.com/guildhub-gg/guildhub/common/config"
)

var (
	ConfPQHost     = config.RegisterOption("guildhub.pq_host", "Postgres host", "localhost")
	ConfPQUsername = config.RegisterOption("guildhub.pq_username", "Postgres user", "guildhub")
	ConfPQPassword = config.RegisterOption("guildhub.pq_password", "Postgres password", "")
	ConfPQDB       = config.RegisterOption("guildhub.pq_db", "Postgres database", "guildhub")
	ConfPQSSLMode  = config.RegisterOption("guildhub.pq_sslmode", "Postgres sslmode", "disable")
	ConfPQMaxConns = config.RegisterOption("guildhub.pq_max_conns", "Max postgres connections", 10)

	ConfRedis         = config.RegisterOption("guildhub.redis", "Redis address", "localhost:6379")
	ConfRedisPoolSize = config.RegisterOption("guildhub.redis_pool_size", "Redis pool size", 10)

	ConfBotToken = config.RegisterOption("guildhub.bot_token", "Discord bot token, optional, enables remote mirroring", "")

	confNoSchemaInit = config.RegisterOption("guildhub.no_schema_init", "Skip db schema initialization", false)
)
