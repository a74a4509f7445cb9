package vtop

import (
	"context"
	"time"
)

// Semester as listed by the portal's semester <select>. Document order
// matters: the first entry is treated as the current semester when the
// user has not picked one.
type Semester struct {
	ID   string `json:"semID"`
	Name string `json:"sem"`
}

type AttendanceSummary struct {
	// CourseID and ClassType are recovered from an inline onclick
	// handler and may be empty when the markup changes shape. Rows are
	// kept anyway; consumers must tolerate missing ids.
	CourseID      string `json:"courseID"`
	ClassType     string `json:"classType"`
	CourseDetails string `json:"courseDetails"`
	FacultyName   string `json:"facultyName"`
	Attended      int    `json:"attended"`
	Total         int    `json:"total"`
	Percentage    int    `json:"percentage"`
	SemesterID    string `json:"semID"`
}

// Key identifies the course-section partition overrides are scoped to.
func (a AttendanceSummary) Key() string {
	return a.CourseID + "-" + a.ClassType
}

type AttendanceLogEntry struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	IsPresent bool   `json:"isPresent"`
	Reason    string `json:"reason,omitempty"`
}

// Override keys are date#time so an entry survives refreshes that
// reorder the log.
func (e AttendanceLogEntry) Key() string {
	return e.Date + "#" + e.Time
}

type AttendanceDetail struct {
	Present    int                  `json:"present"`
	Absent     int                  `json:"absent"`
	OnDuty     int                  `json:"onDuty"`
	Attended   int                  `json:"attended"`
	Total      int                  `json:"total"`
	Percentage int                  `json:"percentage"`
	Log        []AttendanceLogEntry `json:"log"`
}

// AttendanceOverride is a user-entered correction layered over a log
// entry the server has not posted yet or is believed to have wrong.
type AttendanceOverride struct {
	ID             string `json:"id"`
	IsPresent      bool   `json:"isPresent"`
	Status         string `json:"status"`
	OriginalStatus string `json:"originalStatus"`
}

// MarkLine values stay strings: the portal renders "Absent", "-" and
// localized decimals in numeric columns and the extractor is total.
type MarkLine struct {
	Title         string `json:"title"`
	Max           string `json:"max"`
	Weightage     string `json:"weightagePercent"`
	Status        string `json:"status"`
	Scored        string `json:"scored"`
	WeightageMark string `json:"weightageMark"`
	Remark        string `json:"remark"`
}

type MarksRecord struct {
	ClassNumber string     `json:"classNbr"`
	CourseCode  string     `json:"courseCode"`
	CourseTitle string     `json:"courseTitle"`
	CourseType  string     `json:"courseType"`
	Faculty     string     `json:"faculty"`
	Slot        string     `json:"slot"`
	Mode        string     `json:"mode"`
	Marks       []MarkLine `json:"marks"`
}

type ExamRow struct {
	CourseCode    string `json:"courseCode"`
	CourseTitle   string `json:"courseTitle"`
	CourseType    string `json:"courseType"`
	ClassID       string `json:"classID"`
	Slot          string `json:"slot"`
	ExamDate      string `json:"examDate"`
	ExamSession   string `json:"examSession"`
	ReportingTime string `json:"reportingTime"`
	ExamTime      string `json:"examTime"`
	Venue         string `json:"venue"`
	SeatLocation  string `json:"seatLocation"`
	SeatNo        string `json:"seatNo"`
}

type ExamGroup struct {
	Type string    `json:"type"`
	Rows []ExamRow `json:"data"`
}

const (
	ClassTheory = "theory"
	ClassLab    = "lab"
)

type ClassTimings struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ClassSession struct {
	Type        string       `json:"type"`
	Slot        string       `json:"slot"`
	CourseCode  string       `json:"courseCode"`
	CourseTitle string       `json:"courseTitle"`
	Faculty     string       `json:"faculty"`
	Venue       string       `json:"venue"`
	Timings     ClassTimings `json:"timings"`
}

type TimetableDay struct {
	Day     string         `json:"day"`
	Classes []ClassSession `json:"classes"`
}

// Credentials are replaced wholesale on login, never field by field.
type Credentials struct {
	Username string
	Password string
}

// Session is the client's belief about an authenticated portal session.
// The server never tells us when it expires; validity is inferred from
// observed responses.
type Session struct {
	Cookie    string
	CSRF      string
	CreatedAt time.Time
}

func (s Session) IsZero() bool {
	return s.Cookie == "" && s.CSRF == ""
}

// Keychain is the persistent credential/session collaborator. The
// sqlite implementation lives in lib/vtopstore.
type Keychain interface {
	Credentials(ctx context.Context) (Credentials, bool, error)
	Session(ctx context.Context) (Session, bool, error)
	SetSession(ctx context.Context, session Session) error
	ClearSession(ctx context.Context) error
}
