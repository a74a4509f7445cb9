// Package vtopstore is the on-device cache: scraped data as key→JSON
// rows stamped with a display timestamp, plus the credential/session
// keychain, attendance overrides and small preferences.
package vtopstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/timezone"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// cache keys; semester-scoped entities append "-<semID>", attendance
// details append "-<courseID>-<classType>". these exact shapes are
// shared with the mobile UI's cache reader.
const (
	KeyAttendance  = "attendance"
	KeyTimetable   = "timetable"
	KeySemesters   = "semData"
	PrefDefaultSem = "sem"

	prefRefreshLock = "refreshLock"
)

func MarksKey(semesterID string) string {
	return "marks-" + semesterID
}

func ExamScheduleKey(semesterID string) string {
	return "examSchedule-" + semesterID
}

func AttendanceDetailKey(courseID, classType string) string {
	return fmt.Sprintf("attendance-%s-%s", courseID, classType)
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) (Store, error) {
	_, err := database.Exec(Schema)
	if err != nil {
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return Store{db: database}, nil
}

func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database)
}

func (s Store) Close() error {
	return s.db.Close()
}

// WriteCache marshals payload under key and stamps it with the
// canonical created_at display string, which is returned.
func (s Store) WriteCache(ctx context.Context, key string, payload any) (string, error) {
	buff, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", key, err)
	}
	createdAt := timezone.FormatStamp(timezone.Now())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache (key, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at
	`, key, string(buff), createdAt)
	if err != nil {
		return "", fmt.Errorf("write cache %s: %w", key, err)
	}
	return createdAt, nil
}

// ReadCache unmarshals the payload under key into out. ok is false
// when the key was never written.
func (s Store) ReadCache(ctx context.Context, key string, out any) (createdAt string, ok bool, err error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `SELECT payload, created_at FROM cache WHERE key = ?`, key)
	err = row.Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	err = json.Unmarshal([]byte(payload), out)
	if err != nil {
		return "", false, fmt.Errorf("unmarshal cache %s: %w", key, err)
	}
	return createdAt, true, nil
}

func (s Store) SetCredentials(ctx context.Context, creds vtop.Credentials) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, username, password) VALUES (0, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, password = excluded.password
	`, creds.Username, creds.Password)
	return err
}

func (s Store) Credentials(ctx context.Context) (vtop.Credentials, bool, error) {
	var creds vtop.Credentials
	row := s.db.QueryRowContext(ctx, `SELECT username, password FROM credentials WHERE id = 0`)
	err := row.Scan(&creds.Username, &creds.Password)
	if err == sql.ErrNoRows {
		return vtop.Credentials{}, false, nil
	}
	if err != nil {
		return vtop.Credentials{}, false, err
	}
	return creds, true, nil
}

func (s Store) SetSession(ctx context.Context, session vtop.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, cookie, csrf, created_at) VALUES (0, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET cookie = excluded.cookie, csrf = excluded.csrf, created_at = excluded.created_at
	`, session.Cookie, session.CSRF, session.CreatedAt.Unix())
	return err
}

func (s Store) Session(ctx context.Context) (vtop.Session, bool, error) {
	var session vtop.Session
	var createdAt int64
	row := s.db.QueryRowContext(ctx, `SELECT cookie, csrf, created_at FROM session WHERE id = 0`)
	err := row.Scan(&session.Cookie, &session.CSRF, &createdAt)
	if err == sql.ErrNoRows {
		return vtop.Session{}, false, nil
	}
	if err != nil {
		return vtop.Session{}, false, err
	}
	session.CreatedAt = time.Unix(createdAt, 0).In(timezone.Location)
	return session, true, nil
}

func (s Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 0`)
	return err
}

// Overrides returns the stored user corrections for one course
// partition (courseKey is "<courseID>-<classType>").
func (s Store) Overrides(ctx context.Context, courseKey string) ([]vtop.AttendanceOverride, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, is_present, status, original_status FROM overrides
		WHERE course_key = ? ORDER BY id
	`, courseKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vtop.AttendanceOverride
	for rows.Next() {
		var o vtop.AttendanceOverride
		var isPresent int
		err = rows.Scan(&o.ID, &isPresent, &o.Status, &o.OriginalStatus)
		if err != nil {
			return nil, err
		}
		o.IsPresent = isPresent != 0
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetOverrides replaces the override set for one course partition.
func (s Store) SetOverrides(ctx context.Context, courseKey string, overrides []vtop.AttendanceOverride) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM overrides WHERE course_key = ?`, courseKey)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		isPresent := 0
		if o.IsPresent {
			isPresent = 1
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO overrides (course_key, id, is_present, status, original_status)
			VALUES (?, ?, ?, ?, ?)
		`, courseKey, o.ID, isPresent, o.Status, o.OriginalStatus)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Store) SetPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s Store) Pref(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key)
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// AcquireRefreshLock grabs the persisted refresh flag; a false return
// means another refresh already holds it. Callers release in a defer.
func (s Store) AcquireRefreshLock(ctx context.Context) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO prefs (key, value) VALUES (?, '0')
	`, prefRefreshLock)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE prefs SET value = '1' WHERE key = ? AND value = '0'
	`, prefRefreshLock)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s Store) ReleaseRefreshLock(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE prefs SET value = '0' WHERE key = ?
	`, prefRefreshLock)
	return err
}
