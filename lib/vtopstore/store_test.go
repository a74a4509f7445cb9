package vtopstore

import (
	"context"
	"testing"
	"time"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCacheRoundtrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	semesters := []vtop.Semester{
		{ID: "AP2025261", Name: "Fall Semester 2025-26"},
		{ID: "AP2024252", Name: "Winter Semester 2024-25"},
	}
	createdAt, err := store.WriteCache(ctx, KeySemesters, semesters)
	require.NoError(t, err)

	// the stamp must parse with the exact display layout the UI shows
	_, err = time.Parse(timezone.StampLayout, createdAt)
	require.NoError(t, err)

	var got []vtop.Semester
	readAt, ok, err := store.ReadCache(ctx, KeySemesters, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, createdAt, readAt)
	require.Equal(t, semesters, got)
}

func TestCacheOverwrite(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.WriteCache(ctx, KeyAttendance, []string{"old"})
	require.NoError(t, err)
	_, err = store.WriteCache(ctx, KeyAttendance, []string{"new"})
	require.NoError(t, err)

	var got []string
	_, ok, err := store.ReadCache(ctx, KeyAttendance, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"new"}, got)
}

func TestCacheMiss(t *testing.T) {
	store := setupStore(t)

	var got []string
	_, ok, err := store.ReadCache(context.Background(), MarksKey("AP2025261"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyShapes(t *testing.T) {
	require.Equal(t, "marks-AP2025261", MarksKey("AP2025261"))
	require.Equal(t, "examSchedule-AP2025261", ExamScheduleKey("AP2025261"))
	require.Equal(t, "attendance-CSE1001-ETH", AttendanceDetailKey("CSE1001", "ETH"))
}

func TestKeychain(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.Credentials(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	err = store.SetCredentials(ctx, vtop.Credentials{Username: "22BCE0001", Password: "hunter2"})
	require.NoError(t, err)

	creds, ok, err := store.Credentials(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "22BCE0001", creds.Username)

	_, ok, err = store.Session(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	stamp := time.Date(2026, 8, 30, 10, 0, 0, 0, timezone.Location)
	err = store.SetSession(ctx, vtop.Session{
		Cookie:    "JSESSIONID=abc",
		CSRF:      "token",
		CreatedAt: stamp,
	})
	require.NoError(t, err)

	session, ok, err := store.Session(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "JSESSIONID=abc", session.Cookie)
	require.Equal(t, "token", session.CSRF)
	require.True(t, stamp.Equal(session.CreatedAt))

	err = store.ClearSession(ctx)
	require.NoError(t, err)
	_, ok, err = store.Session(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOverrides(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	key := "CSE1001-ETH"
	got, err := store.Overrides(ctx, key)
	require.NoError(t, err)
	require.Empty(t, got)

	overrides := []vtop.AttendanceOverride{
		{ID: "12/08/2026#08:00", IsPresent: true, Status: "Present", OriginalStatus: "Absent"},
		{ID: "14/08/2026#10:00", IsPresent: false, Status: "Absent", OriginalStatus: "Not Posted"},
	}
	err = store.SetOverrides(ctx, key, overrides)
	require.NoError(t, err)

	got, err = store.Overrides(ctx, key)
	require.NoError(t, err)
	require.Equal(t, overrides, got)

	// replacement is whole-partition, and other partitions stay put
	err = store.SetOverrides(ctx, "MAT1011-ETH", overrides[:1])
	require.NoError(t, err)
	err = store.SetOverrides(ctx, key, overrides[1:])
	require.NoError(t, err)

	got, err = store.Overrides(ctx, key)
	require.NoError(t, err)
	require.Equal(t, overrides[1:], got)
	got, err = store.Overrides(ctx, "MAT1011-ETH")
	require.NoError(t, err)
	require.Equal(t, overrides[:1], got)
}

func TestPrefs(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.Pref(ctx, PrefDefaultSem)
	require.NoError(t, err)
	require.False(t, ok)

	err = store.SetPref(ctx, PrefDefaultSem, "AP2025261")
	require.NoError(t, err)
	err = store.SetPref(ctx, PrefDefaultSem, "AP2024252")
	require.NoError(t, err)

	value, ok, err := store.Pref(ctx, PrefDefaultSem)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "AP2024252", value)
}

func TestRefreshLock(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ok, err := store.AcquireRefreshLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// held: a second acquire must lose
	ok, err = store.AcquireRefreshLock(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	err = store.ReleaseRefreshLock(ctx)
	require.NoError(t, err)

	ok, err = store.AcquireRefreshLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}
