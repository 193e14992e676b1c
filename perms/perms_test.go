package perms

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/testutils"
)

func TestMain(m *testing.M) {
	conn, err := testutils.InitPQ([]string{"guild_perm_configs"}, DBSchemas)
	if err != nil {
		fmt.Println("Failed connecting to postgres database, not running tests: ", err)
		return
	}

	common.PQ = conn
	common.SQLX = sqlx.NewDb(conn, "postgres")

	os.Exit(m.Run())
}

func cleanupPermConfigs(t *testing.T) {
	t.Cleanup(func() {
		testutils.ClearTables(common.PQ, "guild_perm_configs")
	})
}

func TestSeedOwnerFallbackBootstrapsFirstOfficer(t *testing.T) {
	cleanupPermConfigs(t)
	ctx := context.Background()

	guild := int64(900)
	owner := int64(1000)

	assert.False(t, IsOfficer(ctx, guild, owner), "a fresh guild denies everyone")

	require.NoError(t, SeedOwnerFallback(ctx, guild, owner))

	assert.True(t, IsOfficer(ctx, guild, owner), "the seeded owner holds officer authority")
	assert.False(t, IsOfficer(ctx, guild, 1001), "everyone else is still denied")
}

func TestSeedOwnerFallbackNeverOverwrites(t *testing.T) {
	cleanupPermConfigs(t)
	ctx := context.Background()

	guild := int64(901)

	require.NoError(t, SetGuildConfig(ctx, &GuildConfig{
		GuildID:       guild,
		OfficerRoleID: null.Int64From(5),
		FallbackMode:  "",
		OwnerID:       1000,
	}))

	require.NoError(t, SeedOwnerFallback(ctx, guild, 2000))

	conf, err := GetGuildConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), conf.OwnerID)
	assert.Equal(t, "", conf.FallbackMode)
	assert.Equal(t, int64(5), conf.OfficerRoleID.Int64)
}

func TestSeedOwnerFallbackIdempotent(t *testing.T) {
	cleanupPermConfigs(t)
	ctx := context.Background()

	guild := int64(902)

	require.NoError(t, SeedOwnerFallback(ctx, guild, 1000))
	require.NoError(t, SeedOwnerFallback(ctx, guild, 3000))

	conf, err := GetGuildConfig(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), conf.OwnerID, "the first seed stands")
	assert.Equal(t, FallbackModeOwner, conf.FallbackMode)
}
