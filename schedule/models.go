package schedule

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/volatiletech/null/v8"

	"github.com/guildhub-gg/guildhub/common"
)

// Session is one scheduled event. ChannelID/MessageID are set exactly once,
// at first successful post, and are immutable afterwards.
type Session struct {
	ID      int64 `db:"id" json:"id,string"`
	GuildID int64 `db:"guild_id" json:"guild_id,string"`

	Title           string    `db:"title" json:"title"`
	StartsAt        time.Time `db:"starts_at" json:"starts_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Notes           string    `db:"notes" json:"notes"`

	ChannelID null.Int64 `db:"channel_id" json:"channel_id,omitempty"`
	MessageID null.Int64 `db:"message_id" json:"message_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Posted reports whether the session has a channel message
func (s *Session) Posted() bool {
	return s.MessageID.Valid
}

// RSVP is one member's answer for one session, unique per (session, user)
type RSVP struct {
	SessionID int64     `db:"session_id" json:"session_id,string"`
	UserID    int64     `db:"user_id" json:"user_id,string"`
	Status    Status    `db:"status" json:"status"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateSession validates and stores a new session. The start time arrives as
// a string from the outside and is normalized to a proper instant here, at
// the storage boundary.
func CreateSession(ctx context.Context, guildID int64, title, startsAt string, durationMinutes int, notes string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "can't be empty")
	}
	if len(title) > 256 {
		return nil, NewValidationError("title", "too long, max 256 characters")
	}

	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return nil, NewValidationError("duration_minutes", "out of range, must be %d-%d", MinDurationMinutes, MaxDurationMinutes)
	}

	parsedStart, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return nil, NewValidationError("starts_at", "not a valid RFC3339 timestamp")
	}

	// only upcoming sessions count against the cap, finished ones pile up
	count := 0
	err = common.SQLX.GetContext(ctx, &count,
		"SELECT count(*) FROM schedule_sessions WHERE guild_id = $1 AND starts_at > now()", guildID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}
	if count >= MaxActiveSessions {
		return nil, NewValidationError("guild", "max %d active sessions", MaxActiveSessions)
	}

	now := time.Now().UTC()
	s := &Session{
		GuildID:         guildID,
		Title:           title,
		StartsAt:        parsedStart.UTC(),
		DurationMinutes: durationMinutes,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = common.SQLX.QueryRowContext(ctx, `
INSERT INTO schedule_sessions (guild_id, title, starts_at, duration_minutes, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		s.GuildID, s.Title, s.StartsAt, s.DurationMinutes, s.Notes, now).Scan(&s.ID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return s, nil
}

// SessionPatch is a partial update, nil fields are left untouched
type SessionPatch struct {
	Title           *string `json:"title"`
	StartsAt        *string `json:"starts_at"`
	DurationMinutes *int    `json:"duration_minutes"`
	Notes           *string `json:"notes"`
}

// UpdateSession applies the patch, validating the same way as CreateSession
func UpdateSession(ctx context.Context, guildID, sessionID int64, patch *SessionPatch) (*Session, error) {
	s, err := GetSession(ctx, guildID, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" || len(trimmed) > 256 {
			return nil, NewValidationError("title", "must be 1-256 characters")
		}
		s.Title = trimmed
	}

	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes < MinDurationMinutes || *patch.DurationMinutes > MaxDurationMinutes {
			return nil, NewValidationError("duration_minutes", "out of range, must be %d-%d", MinDurationMinutes, MaxDurationMinutes)
		}
		s.DurationMinutes = *patch.DurationMinutes
	}

	if patch.StartsAt != nil {
		parsed, err := time.Parse(time.RFC3339, *patch.StartsAt)
		if err != nil {
			return nil, NewValidationError("starts_at", "not a valid RFC3339 timestamp")
		}
		s.StartsAt = parsed.UTC()
	}

	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}

	s.UpdatedAt = time.Now().UTC()

	_, err = common.SQLX.ExecContext(ctx, `
UPDATE schedule_sessions SET title = $1, starts_at = $2, duration_minutes = $3, notes = $4, updated_at = $5
WHERE id = $6 AND guild_id = $7`,
		s.Title, s.StartsAt, s.DurationMinutes, s.Notes, s.UpdatedAt, s.ID, s.GuildID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return s, nil
}

// DeleteSession removes the session, attendance rows cascade with it
func DeleteSession(ctx context.Context, guildID, sessionID int64) (*Session, error) {
	s, err := GetSession(ctx, guildID, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}

	_, err = common.SQLX.ExecContext(ctx, "DELETE FROM schedule_sessions WHERE id = $1 AND guild_id = $2", sessionID, guildID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return s, nil
}

// GetSession returns the session, nil when it doesn't exist in the guild
func GetSession(ctx context.Context, guildID, sessionID int64) (*Session, error) {
	s := &Session{}
	err := common.SQLX.GetContext(ctx, s,
		"SELECT * FROM schedule_sessions WHERE id = $1 AND guild_id = $2", sessionID, guildID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return s, nil
}

// GetSessionByID looks the session up without a guild scope, used by the
// interaction gateway which only has the action token
func GetSessionByID(ctx context.Context, sessionID int64) (*Session, error) {
	s := &Session{}
	err := common.SQLX.GetContext(ctx, s, "SELECT * FROM schedule_sessions WHERE id = $1", sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return s, nil
}

// GuildSessions lists the guild's sessions ordered by start time
func GuildSessions(ctx context.Context, guildID int64) ([]*Session, error) {
	result := make([]*Session, 0)
	err := common.SQLX.SelectContext(ctx, &result,
		"SELECT * FROM schedule_sessions WHERE guild_id = $1 ORDER BY starts_at ASC", guildID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return result, nil
}

// MarkPosted records the channel message identifiers, only the first call for
// a session wins, they are immutable afterwards
func MarkPosted(ctx context.Context, sessionID, channelID, messageID int64) (bool, error) {
	res, err := common.SQLX.ExecContext(ctx, `
UPDATE schedule_sessions SET channel_id = $1, message_id = $2 WHERE id = $3 AND message_id IS NULL`,
		channelID, messageID, sessionID)
	if err != nil {
		return false, errors.WithStackIf(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStackIf(err)
	}

	return rows > 0, nil
}

// GetRSVP returns the stored answer for (session, user), nil when none exists
func GetRSVP(ctx context.Context, sessionID, userID int64) (*RSVP, error) {
	r := &RSVP{}
	err := common.SQLX.GetContext(ctx, r,
		"SELECT * FROM schedule_attendance WHERE session_id = $1 AND user_id = $2", sessionID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return r, nil
}

// SetRSVP stores the answer for (session, user), replacing any previous one.
// Last writer wins, there is nothing to merge.
func SetRSVP(ctx context.Context, sessionID, userID int64, status Status) error {
	if !ValidStatus(status) {
		return NewValidationError("status", "must be one of in, maybe, out")
	}

	_, err := common.SQLX.ExecContext(ctx, `
INSERT INTO schedule_attendance (session_id, user_id, status, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		sessionID, userID, status, time.Now().UTC())

	return errors.WithStackIf(err)
}

// Roster returns all answers for the session in a stable order
func Roster(ctx context.Context, sessionID int64) ([]*RSVP, error) {
	result := make([]*RSVP, 0)
	err := common.SQLX.SelectContext(ctx, &result,
		"SELECT * FROM schedule_attendance WHERE session_id = $1 ORDER BY updated_at ASC, user_id ASC", sessionID)
	if err != nil {
		return nil, errors.WithStackIf(err)
	}

	return result, nil
}

// SetSignupChannel binds the channel session messages get posted to
func SetSignupChannel(ctx context.Context, guildID, channelID int64) error {
	_, err := common.SQLX.ExecContext(ctx, `
INSERT INTO schedule_signup_channels (guild_id, channel_id, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (guild_id) DO UPDATE SET channel_id = excluded.channel_id, updated_at = now()`,
		guildID, channelID)

	return errors.WithStackIf(err)
}

// GetSignupChannel returns the bound channel, 0 when none is bound
func GetSignupChannel(ctx context.Context, guildID int64) (int64, error) {
	channelID := int64(0)
	err := common.SQLX.GetContext(ctx, &channelID,
		"SELECT channel_id FROM schedule_signup_channels WHERE guild_id = $1", guildID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WithStackIf(err)
	}

	return channelID, nil
}
