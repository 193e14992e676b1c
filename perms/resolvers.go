package perms

import (
	"context"
	"encoding/json"
	"strconv"

	"emperror.dev/errors"
	"github.com/mediocregopher/radix/v3"

	"github.com/guildhub-gg/guildhub/common"
)

// Verdict is the answer of a single resolver. Unknown lets the next resolver
// in the chain have a go, the chain short-circuits on the first Allow.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictAllow
	VerdictDeny
)

type Resolver interface {
	Name() string
	Resolve(ctx context.Context, conf *GuildConfig, userID int64) (Verdict, error)
}

// defaultChain is owner fallback first (requires no live role data, a brand
// new guild is never locked out of its officer tools), then the cached member
// role mirror, then the live membership lookup.
var defaultChain = []Resolver{
	&ownerFallbackResolver{},
	&cachedRolesResolver{},
	&liveRolesResolver{},
}

// IsOfficer reports whether the user holds officer authority in the guild.
// Any resolver error counts as Unknown, end of chain is deny: permission
// checks fail closed.
func IsOfficer(ctx context.Context, guildID int64, userID int64) bool {
	conf, err := GetGuildConfig(ctx, guildID)
	if err != nil {
		logger.WithError(err).WithField("guild", guildID).Error("failed retrieving guild perm config")
		return false
	}

	return runChain(ctx, defaultChain, conf, userID)
}

func runChain(ctx context.Context, chain []Resolver, conf *GuildConfig, userID int64) bool {
	for _, r := range chain {
		verdict, err := r.Resolve(ctx, conf, userID)
		if err != nil {
			logger.WithError(err).WithField("guild", conf.GuildID).Warn("resolver ", r.Name(), " errored, treating as unknown")
			continue
		}

		switch verdict {
		case VerdictAllow:
			return true
		case VerdictDeny:
			return false
		}
	}

	return false
}

// ownerFallbackResolver grants officer authority to the recorded guild owner
// when the fallback mode is set to owner
type ownerFallbackResolver struct{}

func (o *ownerFallbackResolver) Name() string { return "owner_fallback" }

func (o *ownerFallbackResolver) Resolve(ctx context.Context, conf *GuildConfig, userID int64) (Verdict, error) {
	if conf.FallbackMode == FallbackModeOwner && conf.OwnerID != 0 && conf.OwnerID == userID {
		return VerdictAllow, nil
	}

	return VerdictUnknown, nil
}

// cachedRolesResolver checks the locally mirrored member role list in redis,
// fast but possibly stale
type cachedRolesResolver struct{}

func (c *cachedRolesResolver) Name() string { return "cached_roles" }

func memberRolesKey(guildID, userID int64) string {
	return "member_roles:" + strconv.FormatInt(guildID, 10) + ":" + strconv.FormatInt(userID, 10)
}

func (c *cachedRolesResolver) Resolve(ctx context.Context, conf *GuildConfig, userID int64) (Verdict, error) {
	if !conf.OfficerRoleID.Valid {
		return VerdictUnknown, nil
	}

	var raw string
	err := common.RedisPool.Do(radix.Cmd(&raw, "GET", memberRolesKey(conf.GuildID, userID)))
	if err != nil {
		return VerdictUnknown, errors.WithStackIf(err)
	}

	if raw == "" {
		// nothing mirrored for this member
		return VerdictUnknown, nil
	}

	var roles []int64
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		return VerdictUnknown, errors.WithStackIf(err)
	}

	if common.ContainsInt64Slice(roles, conf.OfficerRoleID.Int64) {
		return VerdictAllow, nil
	}

	return VerdictUnknown, nil
}

// SetCachedMemberRoles writes the member role mirror used by
// cachedRolesResolver, called by whatever synchronizes guild members.
func SetCachedMemberRoles(guildID, userID int64, roles []int64) error {
	serialized, err := json.Marshal(roles)
	if err != nil {
		return errors.WithStackIf(err)
	}

	return common.RedisPool.Do(radix.Cmd(nil, "SET", memberRolesKey(guildID, userID), string(serialized), "EX", "300"))
}

// liveRolesResolver asks the remote guild platform directly, authoritative
// but slow and requires a live credential
type liveRolesResolver struct{}

func (l *liveRolesResolver) Name() string { return "live_roles" }

func (l *liveRolesResolver) Resolve(ctx context.Context, conf *GuildConfig, userID int64) (Verdict, error) {
	if !conf.OfficerRoleID.Valid {
		return VerdictUnknown, nil
	}

	if common.BotSession == nil {
		// no credential configured
		return VerdictUnknown, nil
	}

	member, err := common.BotSession.GuildMember(
		strconv.FormatInt(conf.GuildID, 10), strconv.FormatInt(userID, 10))
	if err != nil {
		return VerdictUnknown, errors.WithStackIf(err)
	}

	parsedRoles := make([]int64, len(member.Roles))
	for i, v := range member.Roles {
		parsedRoles[i] = common.ParseInt64(v)
	}

	// refresh the mirror while we have fresh data
	if err := SetCachedMemberRoles(conf.GuildID, userID, parsedRoles); err != nil {
		logger.WithError(err).Warn("failed refreshing member role mirror")
	}

	if common.ContainsInt64Slice(parsedRoles, conf.OfficerRoleID.Int64) {
		return VerdictAllow, nil
	}

	return VerdictUnknown, nil
}
