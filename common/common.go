package common

import (
	"database/sql"
	"fmt"

	"emperror.dev/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mediocregopher/radix/v3"
	"github.com/sirupsen/logrus"

	"github.com/guildhub-gg/guildhub/common/config"
)

const VERSION = "0.4.0"

var (
	// PQ is the raw postgres connection, SQLX wraps the same connection
	PQ   *sql.DB
	SQLX *sqlx.DB

	RedisPool *radix.Pool

	// BotSession is the discord session used for all outbound rest calls,
	// nil when no bot token is configured (remote mirroring disabled)
	BotSession *discordgo.Session

	logger = logrus.WithField("p", "common")
)

// CoreInit connects the shared resources, has to be called before any plugin
// is initialized.
func CoreInit(loadConfig bool) error {
	if loadConfig {
		config.AddSource(&config.EnvSource{})
		config.Load()
	}

	logrus.AddHook(ContextHook{})

	err := connectRedis(ConfRedis.GetString())
	if err != nil {
		return errors.WithMessage(err, "connectRedis")
	}

	err = connectDB(ConfPQHost.GetString(), ConfPQUsername.GetString(), ConfPQPassword.GetString(), ConfPQDB.GetString(), ConfPQSSLMode.GetString())
	if err != nil {
		return errors.WithMessage(err, "connectDB")
	}

	if token := ConfBotToken.GetString(); token != "" {
		BotSession, err = discordgo.New("Bot " + token)
		if err != nil {
			return errors.WithMessage(err, "discordgo.New")
		}
	} else {
		logger.Warn("no bot token configured, remote guild mirroring is disabled")
	}

	return nil
}

func connectRedis(addr string) (err error) {
	RedisPool, err = radix.NewPool("tcp", addr, ConfRedisPoolSize.GetInt())
	if err != nil {
		logger.WithError(err).Error("failed initializing redis pool")
	}

	return
}

func connectDB(host, user, pass, dbName, sslMode string) error {
	if host == "" {
		host = "localhost"
	}

	db, err := sql.Open("postgres", fmt.Sprintf("host='%s' user='%s' dbname='%s' sslmode='%s' password='%s'", host, user, dbName, sslMode, pass))
	if err != nil {
		return err
	}

	PQ = db
	SQLX = sqlx.NewDb(PQ, "postgres")

	PQ.SetMaxOpenConns(ConfPQMaxConns.GetInt())
	PQ.SetMaxIdleConns(ConfPQMaxConns.GetInt())

	return nil
}
