package schedule

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Schedule statuses as reported by the server.
const (
	StatusProposed = "proposed"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type (
	Subject struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Acronym string `json:"acronym"`
	}

	Teacher struct {
		ID        int    `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}

	Group struct {
		ID             int    `json:"id"`
		Name           string `json:"name"`
		Year           int    `json:"year"`
		Specialization string `json:"specialization"`
	}

	Room struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
		Building string `json:"building"`
	}

	ExamPeriod struct {
		ID            int    `json:"id"`
		Name          string `json:"name"`
		AcademicYear  string `json:"academic_year"`
		Semester      int    `json:"semester"`
		ExamStartDate string `json:"exam_start_date"` // 2006-01-02
		ExamEndDate   string `json:"exam_end_date"`
	}

	// Schedule is one exam slot as returned by the server; the client never
	// derives any of these fields itself.
	Schedule struct {
		ID        int       `json:"id"`
		Subject   Subject   `json:"subject"`
		Teacher   Teacher   `json:"teacher"`
		Group     Group     `json:"group"`
		Room      *Room     `json:"room,omitempty"` // unset until approval
		Date      string    `json:"date"`           // 2006-01-02
		StartTime string    `json:"startTime"`      // 15:04
		EndTime   string    `json:"endTime"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Input is the create/propose payload; the room may stay unset until the
	// secretariat approves a slot.
	Input struct {
		SubjectID int      `json:"subjectId" validate:"required,gt=0"`
		TeacherID int      `json:"teacherId" validate:"required,gt=0"`
		GroupID   int      `json:"groupId" validate:"required,gt=0"`
		RoomID    null.Int `json:"roomId,omitempty" validate:"omitempty,gt=0"`
		Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
		StartTime string   `json:"startTime" validate:"required,datetime=15:04"`
		EndTime   string   `json:"endTime" validate:"required,datetime=15:04"`
	}

	// Update carries partial changes; zero-valued fields are omitted.
	Update struct {
		SubjectID null.Int    `json:"subjectId,omitempty" validate:"omitempty,gt=0"`
		TeacherID null.Int    `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
		GroupID   null.Int    `json:"groupId,omitempty" validate:"omitempty,gt=0"`
		RoomID    null.Int    `json:"roomId,omitempty" validate:"omitempty,gt=0"`
		Date      null.String `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
		StartTime null.String `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
		EndTime   null.String `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
		Status    null.String `json:"status,omitempty" validate:"omitempty,oneof=proposed approved rejected"`
	}

	// Conflict is one server-reported clash for a proposed slot.
	Conflict struct {
		Type      string     `json:"type"` // room | teacher | group
		Schedules []Schedule `json:"schedules"`
	}
)
