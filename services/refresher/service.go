// Package refresher sequences the portal fetches into one "refresh
// all" operation and persists the normalized results.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/vtopstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/refresher")

// ErrRefreshInProgress means another refresh holds the persisted lock.
var ErrRefreshInProgress = errors.New("a refresh is already running")

type Service struct {
	client *vtop.Client
	store  vtopstore.Store
}

func NewService(client *vtop.Client, store vtopstore.Store) Service {
	return Service{
		client: client,
		store:  store,
	}
}

type RefreshResult struct {
	Semester  vtop.Semester
	Courses   []vtop.AttendanceSummary
	Timetable []vtop.TimetableDay
	UpdatedAt string
}

// RefreshAll runs semester list → timetable → attendance summary →
// per-course details (concurrently) → override reconciliation. A
// failed stage short-circuits; cache writes from earlier stages are
// deliberately left in place.
func (s Service) RefreshAll(ctx context.Context) (RefreshResult, error) {
	ctx, span := tracer.Start(ctx, "service:RefreshAll")
	defer span.End()

	acquired, err := s.store.AcquireRefreshLock(ctx)
	if err != nil {
		span.RecordError(err)
		return RefreshResult{}, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !acquired {
		span.SetStatus(codes.Error, ErrRefreshInProgress.Error())
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer func() {
		err := s.store.ReleaseRefreshLock(context.WithoutCancel(ctx))
		if err != nil {
			slog.WarnContext(ctx, "failed to release refresh lock", "err", err)
		}
	}()

	semester, err := s.RefreshSemesters(ctx)
	if err != nil {
		span.RecordError(err)
		return RefreshResult{}, err
	}

	timetable, _, err := s.RefreshTimetable(ctx, semester.ID)
	if err != nil {
		span.RecordError(err)
		return RefreshResult{}, err
	}

	courses, updatedAt, err := s.RefreshAttendance(ctx, semester.ID)
	if err != nil {
		span.RecordError(err)
		return RefreshResult{}, err
	}

	err = s.refreshDetails(ctx, semester.ID, courses)
	if err != nil {
		span.RecordError(err)
		return RefreshResult{}, err
	}

	return RefreshResult{
		Semester:  semester,
		Courses:   courses,
		Timetable: timetable,
		UpdatedAt: updatedAt,
	}, nil
}

// RefreshSemesters fetches the semester list, caches it and resolves
// the active semester, defaulting to the first in document order.
func (s Service) RefreshSemesters(ctx context.Context) (vtop.Semester, error) {
	semesters, err := s.client.Semesters(ctx)
	if err != nil {
		return vtop.Semester{}, fmt.Errorf("refresh semesters: %w", err)
	}
	if len(semesters) == 0 {
		return vtop.Semester{}, fmt.Errorf("refresh semesters: portal listed none")
	}

	_, err = s.store.WriteCache(ctx, vtopstore.KeySemesters, semesters)
	if err != nil {
		return vtop.Semester{}, err
	}

	active, ok, err := s.store.Pref(ctx, vtopstore.PrefDefaultSem)
	if err != nil {
		return vtop.Semester{}, err
	}
	if !ok {
		active = semesters[0].ID
		err = s.store.SetPref(ctx, vtopstore.PrefDefaultSem, active)
		if err != nil {
			return vtop.Semester{}, err
		}
	}

	for _, sem := range semesters {
		if sem.ID == active {
			return sem, nil
		}
	}
	// the preferred semester fell off the portal's list
	return semesters[0], nil
}

func (s Service) RefreshTimetable(ctx context.Context, semesterID string) ([]vtop.TimetableDay, string, error) {
	days, err := s.client.Timetable(ctx, semesterID)
	if err != nil {
		return nil, "", fmt.Errorf("refresh timetable: %w", err)
	}
	createdAt, err := s.store.WriteCache(ctx, vtopstore.KeyTimetable, days)
	if err != nil {
		return nil, "", err
	}
	return days, createdAt, nil
}

func (s Service) RefreshAttendance(ctx context.Context, semesterID string) ([]vtop.AttendanceSummary, string, error) {
	courses, err := s.client.Attendance(ctx, semesterID)
	if err != nil {
		return nil, "", fmt.Errorf("refresh attendance: %w", err)
	}
	createdAt, err := s.store.WriteCache(ctx, vtopstore.KeyAttendance, courses)
	if err != nil {
		return nil, "", err
	}
	return courses, createdAt, nil
}

func (s Service) RefreshMarks(ctx context.Context, semesterID string) ([]vtop.MarksRecord, string, error) {
	records, err := s.client.Marks(ctx, semesterID)
	if err != nil {
		return nil, "", fmt.Errorf("refresh marks: %w", err)
	}
	createdAt, err := s.store.WriteCache(ctx, vtopstore.MarksKey(semesterID), records)
	if err != nil {
		return nil, "", err
	}
	return records, createdAt, nil
}

func (s Service) RefreshExamSchedule(ctx context.Context, semesterID string) ([]vtop.ExamGroup, string, error) {
	groups, err := s.client.ExamSchedule(ctx, semesterID)
	if err != nil {
		return nil, "", fmt.Errorf("refresh exam schedule: %w", err)
	}
	createdAt, err := s.store.WriteCache(ctx, vtopstore.ExamScheduleKey(semesterID), groups)
	if err != nil {
		return nil, "", err
	}
	return groups, createdAt, nil
}

// refreshDetails fetches every course's attendance log concurrently
// and reconciles each against its stored overrides. Requests are user
// triggered and few, so no pool cap; the client rate-limits itself.
func (s Service) refreshDetails(ctx context.Context, semesterID string, courses []vtop.AttendanceSummary) error {
	var errList []error
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, course := range courses {
		if course.CourseID == "" {
			// id recovery failed on this row; there is no detail
			// endpoint to call for it
			slog.WarnContext(ctx, "course row without id, skipping detail", "course", course.CourseDetails)
			continue
		}

		wg.Add(1)
		go func(course vtop.AttendanceSummary) {
			defer wg.Done()
			err := s.refreshCourseDetail(ctx, semesterID, course)
			if err != nil {
				lock.Lock()
				errList = append(errList, err)
				lock.Unlock()
			}
		}(course)
	}
	wg.Wait()

	return errors.Join(errList...)
}

func (s Service) refreshCourseDetail(ctx context.Context, semesterID string, course vtop.AttendanceSummary) error {
	detail, err := s.client.AttendanceDetail(ctx, semesterID, course.CourseID, course.ClassType)
	if err != nil {
		return fmt.Errorf("detail %s: %w", course.Key(), err)
	}

	_, err = s.store.WriteCache(ctx, vtopstore.AttendanceDetailKey(course.CourseID, course.ClassType), detail)
	if err != nil {
		return err
	}

	overrides, err := s.store.Overrides(ctx, course.Key())
	if err != nil {
		return err
	}
	kept := Reconcile(detail.Log, overrides)
	if len(kept) == len(overrides) {
		return nil
	}
	slog.DebugContext(
		ctx, "dropped stale overrides",
		"course", course.Key(),
		"before", len(overrides),
		"after", len(kept),
	)
	return s.store.SetOverrides(ctx, course.Key(), kept)
}
