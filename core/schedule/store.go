package schedule

import (
	"context"
	"sync"

	"github.com/apetrei/examsched/core"
	"github.com/apetrei/examsched/core/resource"
)

// Fallback error messages, used when the server supplies none.
const (
	errFetchAll    = "could not load schedules"
	errFetchOne    = "could not load schedule"
	errCreate      = "could not create schedule"
	errUpdate      = "could not update schedule"
	errRemove      = "could not delete schedule"
	errConflicts   = "conflict check failed"
	errExamPeriods = "could not load exam periods"
	errSubjects    = "could not load subjects"
	errGroups      = "could not load groups"
	errRooms       = "could not load rooms"
	errTeachers    = "could not load teachers"
)

// Store synchronizes the schedule collection plus the read-only reference
// lists every scheduling form needs. The reference lists share the store's
// loading/error envelope, as they always have.
type Store struct {
	*resource.Store[Schedule]

	mu          sync.RWMutex
	examPeriods []ExamPeriod
	subjects    []Subject
	groups      []Group
	rooms       []Room
	teachers    []Teacher
	conflicts   []Conflict
}

func NewStore(api core.APIClient) *Store {
	return &Store{
		Store: resource.NewStore(api, resource.Options[Schedule]{
			Path: "/api/schedule",
			ID:   func(s Schedule) int { return s.ID },
			Messages: resource.Messages{
				FetchAll: errFetchAll,
				FetchOne: errFetchOne,
				Create:   errCreate,
				Update:   errUpdate,
				Remove:   errRemove,
			},
		}),
	}
}

// Create validates the payload locally before submitting it.
func (s *Store) Create(ctx context.Context, in Input) (Schedule, error) {
	if err := core.ValidateStruct(in); err != nil {
		return Schedule{}, err
	}
	return s.Store.Create(ctx, in)
}

// Update validates the partial payload locally before submitting it.
func (s *Store) Update(ctx context.Context, id int, upd Update) (Schedule, error) {
	if err := core.ValidateStruct(upd); err != nil {
		return Schedule{}, err
	}
	return s.Store.Update(ctx, id, upd)
}

// CheckConflicts submits a proposed slot and stores the clashes the server
// reports. The client performs no conflict computation of its own.
func (s *Store) CheckConflicts(ctx context.Context, in Input) ([]Conflict, error) {
	if err := core.ValidateStruct(in); err != nil {
		return nil, err
	}
	var conflicts []Conflict
	err := s.Do(errConflicts, func() error {
		if err := s.Client().Post(ctx, "/api/schedule/check-conflicts", in, &conflicts); err != nil {
			return err
		}
		s.mu.Lock()
		s.conflicts = conflicts
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// Conflicts returns the result of the most recent conflict check.
func (s *Store) Conflicts() []Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conflict, len(s.conflicts))
	copy(out, s.conflicts)
	return out
}

func (s *Store) FetchExamPeriods(ctx context.Context) ([]ExamPeriod, error) {
	var periods []ExamPeriod
	err := s.Do(errExamPeriods, func() error {
		if err := s.Client().Get(ctx, "/api/exam-periods", &periods); err != nil {
			return err
		}
		s.mu.Lock()
		s.examPeriods = periods
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Store) FetchSubjects(ctx context.Context) ([]Subject, error) {
	var subjects []Subject
	err := s.Do(errSubjects, func() error {
		if err := s.Client().Get(ctx, "/api/subjects", &subjects); err != nil {
			return err
		}
		s.mu.Lock()
		s.subjects = subjects
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *Store) FetchGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	err := s.Do(errGroups, func() error {
		if err := s.Client().Get(ctx, "/api/orar/groups", &groups); err != nil {
			return err
		}
		s.mu.Lock()
		s.groups = groups
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) FetchRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := s.Do(errRooms, func() error {
		if err := s.Client().Get(ctx, "/api/orar/rooms", &rooms); err != nil {
			return err
		}
		s.mu.Lock()
		s.rooms = rooms
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Store) FetchTeachers(ctx context.Context) ([]Teacher, error) {
	var teachers []Teacher
	err := s.Do(errTeachers, func() error {
		if err := s.Client().Get(ctx, "/api/orar/teachers", &teachers); err != nil {
			return err
		}
		s.mu.Lock()
		s.teachers = teachers
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

func (s *Store) ExamPeriods() []ExamPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ExamPeriod(nil), s.examPeriods...)
}

func (s *Store) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Subject(nil), s.subjects...)
}

func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Group(nil), s.groups...)
}

func (s *Store) Rooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Room(nil), s.rooms...)
}

func (s *Store) Teachers() []Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Teacher(nil), s.teachers...)
}

// ByTeacher filters the cached collection by teacher.
func (s *Store) ByTeacher(teacherID int) []Schedule {
	var out []Schedule
	for _, sch := range s.Items() {
		if sch.Teacher.ID == teacherID {
			out = append(out, sch)
		}
	}
	return out
}

// ByGroup filters the cached collection by group.
func (s *Store) ByGroup(groupID int) []Schedule {
	var out []Schedule
	for _, sch := range s.Items() {
		if sch.Group.ID == groupID {
			out = append(out, sch)
		}
	}
	return out
}

// ByStatus filters the cached collection by server-assigned status.
func (s *Store) ByStatus(status string) []Schedule {
	var out []Schedule
	for _, sch := range s.Items() {
		if sch.Status == status {
			out = append(out, sch)
		}
	}
	return out
}
