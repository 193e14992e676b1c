// schedule owns scheduled play sessions and their attendance records, and
// renders the channel message that mirrors them.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guildhub-gg/guildhub/common"
)

var logger = common.GetPluginLogger(&Plugin{})

type Plugin struct{}

func (p *Plugin) PluginInfo() *common.PluginInfo {
	return &common.PluginInfo{
		Name:     "Schedule",
		SysName:  "schedule",
		Category: common.PluginCategoryMisc,
	}
}

func RegisterPlugin() {
	common.InitSchemas("schedule", DBSchemas...)
	common.RegisterPlugin(&Plugin{})
}

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS schedule_sessions (
	id BIGSERIAL PRIMARY KEY,

	guild_id BIGINT NOT NULL,

	title TEXT NOT NULL,
	starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
	duration_minutes INT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',

	channel_id BIGINT,
	message_id BIGINT,

	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);
`, `
CREATE INDEX IF NOT EXISTS schedule_sessions_guild_idx ON schedule_sessions(guild_id);
`, `
CREATE TABLE IF NOT EXISTS schedule_attendance (
	session_id BIGINT NOT NULL REFERENCES schedule_sessions(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL,

	status TEXT NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

	PRIMARY KEY(session_id, user_id)
);
`, `
CREATE TABLE IF NOT EXISTS schedule_signup_channels (
	guild_id BIGINT PRIMARY KEY,
	channel_id BIGINT NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);
`}

// Status is a member's RSVP answer for one session
type Status string

const (
	StatusIn    Status = "in"
	StatusMaybe Status = "maybe"
	StatusOut   Status = "out"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusIn, StatusMaybe, StatusOut:
		return true
	}

	return false
}

// MaxActiveSessions caps active sessions per guild
const MaxActiveSessions = 25

// session duration bounds in minutes
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 1440
)

// ValidationError is a field level validation failure with a user-facing reason
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	return v.Field + ": " + v.Message
}

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// ErrSessionNotFound is returned by mutations targeting a session that does
// not exist in the guild
var ErrSessionNotFound = &ValidationError{Field: "session", Message: "unknown session"}

// RSVPCustomID builds the action token carried in the message buttons
func RSVPCustomID(sessionID int64, status Status) string {
	return "rsvp:" + strconv.FormatInt(sessionID, 10) + ":" + string(status)
}

// ParseRSVPCustomID parses an action token of the shape rsvp:<sessionID>:<status>,
// ok is false for anything malformed or with an unknown status
func ParseRSVPCustomID(customID string) (sessionID int64, status Status, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != "rsvp" {
		return 0, "", false
	}

	sessionID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || sessionID <= 0 {
		return 0, "", false
	}

	status = Status(parts[2])
	if !ValidStatus(status) {
		return 0, "", false
	}

	return sessionID, status, true
}
