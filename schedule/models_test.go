package schedule

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/common/testutils"
)

func TestMain(m *testing.M) {
	conn, err := testutils.InitPQ([]string{"schedule_attendance", "schedule_signup_channels", "schedule_sessions"}, DBSchemas)
	if err != nil {
		fmt.Println("Failed connecting to postgres database, not running tests: ", err)
		return
	}

	common.PQ = conn
	common.SQLX = sqlx.NewDb(conn, "postgres")

	os.Exit(m.Run())
}

const testGuild = 500

func cleanupSchedule(t *testing.T) {
	t.Cleanup(func() {
		testutils.ClearTables(common.PQ, "schedule_attendance", "schedule_signup_channels", "schedule_sessions")
	})
}

func TestCreateSession(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.False(t, s.Posted())

	roster, err := Roster(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, RosterCounts{}, CountRoster(roster), "counts start at zero")
}

func TestCreateSessionValidation(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		title    string
		startsAt string
		duration int
	}{
		{"empty title", "", "2025-06-01T20:00:00Z", 90},
		{"whitespace title", "   ", "2025-06-01T20:00:00Z", 90},
		{"zero duration", "Raid", "2025-06-01T20:00:00Z", 0},
		{"negative duration", "Raid", "2025-06-01T20:00:00Z", -5},
		{"too long duration", "Raid", "2025-06-01T20:00:00Z", 1441},
		{"unparseable time", "Raid", "tomorrow at 8", 90},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CreateSession(ctx, testGuild, c.title, c.startsAt, c.duration, "")
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected a validation error, got %v", err)
		})
	}
}

func TestRSVPLastWriterWins(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)

	user := int64(42)

	require.NoError(t, SetRSVP(ctx, s.ID, user, StatusIn))
	require.NoError(t, SetRSVP(ctx, s.ID, user, StatusMaybe))

	roster, err := Roster(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1, "exactly one row per (session, user)")
	assert.Equal(t, StatusMaybe, roster[0].Status, "last delivered press wins")

	counts := CountRoster(roster)
	assert.Equal(t, 0, counts.In, "the In count no longer includes the user")
	assert.Equal(t, 1, counts.Maybe)
}

func TestRSVPIdempotent(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)

	require.NoError(t, SetRSVP(ctx, s.ID, 42, StatusIn))
	require.NoError(t, SetRSVP(ctx, s.ID, 42, StatusIn))

	roster, err := Roster(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, RosterCounts{In: 1}, CountRoster(roster))
}

func TestSetRSVPRejectsUnknownStatus(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)

	err = SetRSVP(ctx, s.ID, 42, Status("sometimes"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDeleteSessionCascades(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)

	require.NoError(t, SetRSVP(ctx, s.ID, 42, StatusIn))
	require.NoError(t, SetRSVP(ctx, s.ID, 43, StatusOut))

	_, err = DeleteSession(ctx, testGuild, s.ID)
	require.NoError(t, err)

	count := 0
	require.NoError(t, common.SQLX.Get(&count, "SELECT count(*) FROM schedule_attendance WHERE session_id = $1", s.ID))
	assert.Zero(t, count, "attendance rows cascade with their session")
}

func TestMarkPostedOnlyOnce(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "")
	require.NoError(t, err)

	set, err := MarkPosted(ctx, s.ID, 1000, 2000)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = MarkPosted(ctx, s.ID, 1001, 2001)
	require.NoError(t, err)
	assert.False(t, set, "message identifiers are immutable once set")

	stored, err := GetSession(ctx, testGuild, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored.ChannelID.Int64)
	assert.Equal(t, int64(2000), stored.MessageID.Int64)
}

func TestUpdateSessionPartialPatch(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, testGuild, "Boss Run", "2025-06-01T20:00:00Z", 90, "old notes")
	require.NoError(t, err)

	newTitle := "Boss Run II"
	updated, err := UpdateSession(ctx, testGuild, s.ID, &SessionPatch{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "Boss Run II", updated.Title)
	assert.Equal(t, 90, updated.DurationMinutes, "unpatched fields untouched")
	assert.Equal(t, "old notes", updated.Notes)

	badDuration := 0
	_, err = UpdateSession(ctx, testGuild, s.ID, &SessionPatch{DurationMinutes: &badDuration})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestUpdateUnknownSession(t *testing.T) {
	cleanupSchedule(t)

	_, err := UpdateSession(context.Background(), testGuild, 99999, &SessionPatch{})
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestDeleteUnknownSession(t *testing.T) {
	cleanupSchedule(t)

	_, err := DeleteSession(context.Background(), testGuild, 99999)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestMaxActiveSessionsCap(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	for i := 0; i < MaxActiveSessions; i++ {
		_, err := CreateSession(ctx, testGuild, fmt.Sprintf("Raid %d", i), "2030-01-01T20:00:00Z", 60, "")
		require.NoError(t, err)
	}

	_, err := CreateSession(ctx, testGuild, "One too many", "2030-01-02T20:00:00Z", 60, "")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// finished sessions don't count against the cap
	otherGuild := int64(testGuild + 1)
	for i := 0; i < MaxActiveSessions; i++ {
		_, err := CreateSession(ctx, otherGuild, fmt.Sprintf("Old Raid %d", i), "2020-01-01T20:00:00Z", 60, "")
		require.NoError(t, err)
	}

	_, err = CreateSession(ctx, otherGuild, "Fresh Raid", "2030-01-01T20:00:00Z", 60, "")
	require.NoError(t, err)
}

func TestSignupChannelBinding(t *testing.T) {
	cleanupSchedule(t)
	ctx := context.Background()

	ch, err := GetSignupChannel(ctx, testGuild)
	require.NoError(t, err)
	assert.Zero(t, ch)

	require.NoError(t, SetSignupChannel(ctx, testGuild, 12345))
	require.NoError(t, SetSignupChannel(ctx, testGuild, 67890))

	ch, err = GetSignupChannel(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, int64(67890), ch, "rebinding replaces the previous channel")
}
