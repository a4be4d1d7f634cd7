// Package testutil hosts a fake exam API server backed by in-memory
// fixtures, plus small transport stubs, for exercising the stores end to
// end without a real backend. The fake speaks the wire contract only; it
// deliberately does not import the domain packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/apetrei/examsched/core"
	"github.com/apetrei/examsched/services/examapi"
)

// Wire shapes, mirroring the server's JSON.
type (
	APIUser struct {
		ID        int    `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Role      string `json:"role"`
		IsActive  bool   `json:"is_active"`
	}

	APISubject struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Acronym string `json:"acronym"`
	}

	APITeacher struct {
		ID        int    `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	}

	APIGroup struct {
		ID             int    `json:"id"`
		Name           string `json:"name"`
		Year           int    `json:"year"`
		Specialization string `json:"specialization"`
	}

	APIRoom struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
		Building string `json:"building"`
	}

	APIPeriod struct {
		ID            int    `json:"id"`
		Name          string `json:"name"`
		AcademicYear  string `json:"academic_year"`
		Semester      int    `json:"semester"`
		ExamStartDate string `json:"exam_start_date"`
		ExamEndDate   string `json:"exam_end_date"`
	}

	APISchedule struct {
		ID        int        `json:"id"`
		Subject   APISubject `json:"subject"`
		Teacher   APITeacher `json:"teacher"`
		Group     APIGroup   `json:"group"`
		Room      *APIRoom   `json:"room,omitempty"`
		Date      string     `json:"date"`
		StartTime string     `json:"startTime"`
		EndTime   string     `json:"endTime"`
		Status    string     `json:"status"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}

	scheduleInput struct {
		SubjectID int    `json:"subjectId"`
		TeacherID int    `json:"teacherId"`
		GroupID   int    `json:"groupId"`
		RoomID    *int   `json:"roomId"`
		Date      string `json:"date"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Status    string `json:"status"`
	}

	APINotification struct {
		ID        int       `json:"id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Type      string    `json:"type"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"createdAt"`
	}

	APISettings struct {
		EmailNotifications    bool `json:"email_notifications"`
		PushNotifications     bool `json:"push_notifications"`
		ScheduleNotifications bool `json:"schedule_notifications"`
		SystemNotifications   bool `json:"system_notifications"`
	}
)

// Server is the fake exam API.
type Server struct {
	*httptest.Server
	App    *echo.Echo
	Secret string

	mu         sync.Mutex
	requests   []string
	assertions map[string]int // external identity assertion -> user id

	Users         map[int]*APIUser
	nextUserID    int
	Subjects      []APISubject
	Teachers      []APITeacher
	Groups        []APIGroup
	Rooms         []APIRoom
	Periods       []APIPeriod
	Schedules     []*APISchedule
	nextSchedID   int
	Notifications []*APINotification
	Settings      APISettings
	ImportCreated int
	ImportUpdated int
}

func NewServer() *Server {
	s := &Server{
		App:        echo.New(),
		Secret:     "testing-secret",
		assertions:  map[string]int{},
		Users:       map[int]*APIUser{},
		nextUserID:  1,
		nextSchedID: 1,
		Settings: APISettings{
			EmailNotifications:    true,
			ScheduleNotifications: true,
			SystemNotifications:   true,
		},
	}
	s.routes()
	s.Server = httptest.NewServer(s.App)
	return s
}

// NewClient builds a real transport client pointed at the fake server.
func (s *Server) NewClient(tokens core.TokenSource) *examapi.Client {
	return examapi.NewClient(examapi.Options{
		BaseURL: s.URL,
		Timeout: 5 * time.Second,
		Tokens:  tokens,
	})
}

// StaticToken is a fixed core.TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Requests returns "METHOD /path" for every request seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// AddUser registers a user fixture and returns it.
func (s *Server) AddUser(email, firstName, lastName, role string) APIUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &APIUser{ID: s.nextUserID, Email: email, FirstName: firstName, LastName: lastName, Role: role, IsActive: true}
	s.nextUserID++
	s.Users[u.ID] = u
	return *u
}

// AllowAssertion maps an external identity assertion to a fixture user.
func (s *Server) AllowAssertion(assertion string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assertions[assertion] = userID
}

// AddSchedule registers a schedule fixture and returns it.
func (s *Server) AddSchedule(subject APISubject, teacher APITeacher, group APIGroup, room *APIRoom, date, start, end string) APISchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sch := &APISchedule{
		ID: s.nextSchedID, Subject: subject, Teacher: teacher, Group: group, Room: room,
		Date: date, StartTime: start, EndTime: end, Status: "approved",
		CreatedAt: now, UpdatedAt: now,
	}
	s.nextSchedID++
	s.Schedules = append(s.Schedules, sch)
	return *sch
}

// AddNotification registers a notification fixture.
func (s *Server) AddNotification(id int, title string, read bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, &APINotification{
		ID: id, Title: title, Message: title, Type: "info", Read: read, CreatedAt: time.Now().UTC(),
	})
}

// MintToken issues a signed HS256 token for a fixture user.
func (s *Server) MintToken(userID int, expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
	if err != nil {
		panic(err)
	}
	return token
}

func apiErr(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) routes() {
	s.App.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			s.requests = append(s.requests, c.Request().Method+" "+c.Request().URL.Path)
			s.mu.Unlock()
			return next(c)
		}
	})

	s.App.POST("/api/auth/login", s.login)

	auth := s.App.Group("/api", s.requireAuth)
	auth.GET("/auth/me", s.me)
	auth.PUT("/auth/users/:id", s.updateUser)

	auth.GET("/auth/admin/users", s.listUsers)
	auth.POST("/auth/admin/users", s.createUser)
	auth.GET("/auth/admin/users/:id", s.getUser)
	auth.PUT("/auth/admin/users/:id", s.updateUser)
	auth.DELETE("/auth/admin/users/:id", s.deleteUser)
	auth.POST("/auth/admin/users/import", s.importUsers)

	auth.GET("/schedule", s.listSchedules)
	auth.POST("/schedule", s.createSchedule)
	auth.GET("/schedule/:id", s.getSchedule)
	auth.PUT("/schedule/:id", s.updateSchedule)
	auth.DELETE("/schedule/:id", s.deleteSchedule)
	auth.POST("/schedule/check-conflicts", s.checkConflicts)

	auth.GET("/exam-periods", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Periods) })
	auth.GET("/subjects", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Subjects) })
	auth.GET("/orar/groups", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Groups) })
	auth.GET("/orar/rooms", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Rooms) })
	auth.GET("/orar/teachers", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Teachers) })

	auth.GET("/notifications", s.listNotifications)
	auth.POST("/notifications", s.sendNotification)
	auth.PUT("/notifications/read-all", s.markAllRead)
	auth.PUT("/notifications/:id/read", s.markRead)
	auth.GET("/notifications/settings", func(c echo.Context) error { return c.JSON(http.StatusOK, s.Settings) })
	auth.PUT("/notifications/settings", s.updateSettings)
}

// requireAuth verifies the bearer token and stashes the acting user.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return apiErr(c, http.StatusUnauthorized, "missing or invalid token")
		}
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims,
			func(*jwt.Token) (interface{}, error) { return []byte(s.Secret), nil })
		if err != nil {
			return apiErr(c, http.StatusUnauthorized, "missing or invalid token")
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			return apiErr(c, http.StatusUnauthorized, "missing or invalid token")
		}
		s.mu.Lock()
		usr, ok := s.Users[id]
		s.mu.Unlock()
		if !ok {
			return apiErr(c, http.StatusUnauthorized, "unknown user")
		}
		c.Set("user", *usr)
		return next(c)
	}
}

func (s *Server) login(c echo.Context) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	id, ok := s.assertions[body.Token]
	usr := s.Users[id]
	s.mu.Unlock()
	if !ok || usr == nil {
		return apiErr(c, http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token": s.MintToken(usr.ID, time.Now().Add(time.Hour)),
		"user":         usr,
	})
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, c.Get("user"))
}

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]APIUser, 0, len(s.Users))
	for id := 1; id < s.nextUserID; id++ {
		if u, ok := s.Users[id]; ok {
			users = append(users, *u)
		}
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	usr, ok := s.Users[id]
	s.mu.Unlock()
	if !ok {
		return apiErr(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, usr)
}

func (s *Server) createUser(c echo.Context) error {
	var body APIUser
	if err := c.Bind(&body); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	body.ID = s.nextUserID
	body.IsActive = true
	s.nextUserID++
	s.Users[body.ID] = &body
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, body)
}

func (s *Server) updateUser(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	usr, ok := s.Users[id]
	s.mu.Unlock()
	if !ok {
		return apiErr(c, http.StatusNotFound, "user not found")
	}
	var body struct {
		Email     *string `json:"email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Role      *string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	if body.Email != nil {
		usr.Email = *body.Email
	}
	if body.FirstName != nil {
		usr.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		usr.LastName = *body.LastName
	}
	if body.Role != nil {
		usr.Role = *body.Role
	}
	out := *usr
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	delete(s.Users, id)
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) importUsers(c echo.Context) error {
	if _, err := c.FormFile("file"); err != nil {
		return apiErr(c, http.StatusBadRequest, "missing file")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"created": s.ImportCreated,
		"updated": s.ImportUpdated,
		"errors":  []string{},
	})
}

func (s *Server) listSchedules(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]APISchedule, 0, len(s.Schedules))
	for _, sch := range s.Schedules {
		out = append(out, *sch)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getSchedule(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sch := range s.Schedules {
		if sch.ID == id {
			return c.JSON(http.StatusOK, *sch)
		}
	}
	return apiErr(c, http.StatusNotFound, "schedule not found")
}

// materialize resolves an input's foreign keys against the fixtures.
func (s *Server) materialize(in scheduleInput) (APISchedule, bool) {
	sch := APISchedule{
		Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime,
		Status:    "proposed",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	var found bool
	for _, sub := range s.Subjects {
		if sub.ID == in.SubjectID {
			sch.Subject, found = sub, true
		}
	}
	if !found {
		return sch, false
	}
	for _, t := range s.Teachers {
		if t.ID == in.TeacherID {
			sch.Teacher = t
		}
	}
	for _, g := range s.Groups {
		if g.ID == in.GroupID {
			sch.Group = g
		}
	}
	if in.RoomID != nil {
		for i := range s.Rooms {
			if s.Rooms[i].ID == *in.RoomID {
				room := s.Rooms[i]
				sch.Room = &room
			}
		}
	}
	return sch, true
}

func (s *Server) createSchedule(c echo.Context) error {
	var in scheduleInput
	if err := c.Bind(&in); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sch, ok := s.materialize(in)
	if !ok {
		return apiErr(c, http.StatusBadRequest, "unknown subject")
	}
	sch.ID = s.nextSchedID
	s.nextSchedID++
	s.Schedules = append(s.Schedules, &sch)
	return c.JSON(http.StatusCreated, sch)
}

func (s *Server) updateSchedule(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	var in scheduleInput
	if err := c.Bind(&in); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sch := range s.Schedules {
		if sch.ID != id {
			continue
		}
		if in.Date != "" {
			sch.Date = in.Date
		}
		if in.StartTime != "" {
			sch.StartTime = in.StartTime
		}
		if in.EndTime != "" {
			sch.EndTime = in.EndTime
		}
		if in.Status != "" {
			sch.Status = in.Status
		}
		sch.UpdatedAt = time.Now().UTC()
		return c.JSON(http.StatusOK, *sch)
	}
	return apiErr(c, http.StatusNotFound, "schedule not found")
}

func (s *Server) deleteSchedule(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Schedules[:0]
	for _, sch := range s.Schedules {
		if sch.ID != id {
			kept = append(kept, sch)
		}
	}
	s.Schedules = kept
	return c.NoContent(http.StatusNoContent)
}

// checkConflicts reports fixture schedules overlapping the proposal on the
// same date by room, teacher or group. Deliberately naive; it only needs to
// be authoritative, the client never re-computes it.
func (s *Server) checkConflicts(c echo.Context) error {
	var in scheduleInput
	if err := c.Bind(&in); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	overlaps := func(sch *APISchedule) bool {
		return sch.Date == in.Date && sch.StartTime < in.EndTime && in.StartTime < sch.EndTime
	}

	byType := map[string][]APISchedule{}
	for _, sch := range s.Schedules {
		if !overlaps(sch) {
			continue
		}
		if in.RoomID != nil && sch.Room != nil && sch.Room.ID == *in.RoomID {
			byType["room"] = append(byType["room"], *sch)
		}
		if sch.Teacher.ID == in.TeacherID {
			byType["teacher"] = append(byType["teacher"], *sch)
		}
		if sch.Group.ID == in.GroupID {
			byType["group"] = append(byType["group"], *sch)
		}
	}

	conflicts := make([]map[string]interface{}, 0, len(byType))
	for _, typ := range []string{"room", "teacher", "group"} {
		if scheds, ok := byType[typ]; ok {
			conflicts = append(conflicts, map[string]interface{}{"type": typ, "schedules": scheds})
		}
	}
	return c.JSON(http.StatusOK, conflicts)
}

func (s *Server) listNotifications(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]APINotification, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		out = append(out, *n)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) sendNotification(c echo.Context) error {
	var body APINotification
	if err := c.Bind(&body); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	body.ID = len(s.Notifications) + 1
	body.CreatedAt = time.Now().UTC()
	s.Notifications = append(s.Notifications, &body)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, body)
}

func (s *Server) markRead(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.Notifications {
		if n.ID == id {
			n.Read = true
			return c.NoContent(http.StatusOK)
		}
	}
	return apiErr(c, http.StatusNotFound, "notification not found")
}

func (s *Server) markAllRead(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.Notifications {
		n.Read = true
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) updateSettings(c echo.Context) error {
	var body struct {
		EmailNotifications    *bool `json:"email_notifications"`
		PushNotifications     *bool `json:"push_notifications"`
		ScheduleNotifications *bool `json:"schedule_notifications"`
		SystemNotifications   *bool `json:"system_notifications"`
	}
	if err := c.Bind(&body); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid request")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if body.EmailNotifications != nil {
		s.Settings.EmailNotifications = *body.EmailNotifications
	}
	if body.PushNotifications != nil {
		s.Settings.PushNotifications = *body.PushNotifications
	}
	if body.ScheduleNotifications != nil {
		s.Settings.ScheduleNotifications = *body.ScheduleNotifications
	}
	if body.SystemNotifications != nil {
		s.Settings.SystemNotifications = *body.SystemNotifications
	}
	return c.JSON(http.StatusOK, s.Settings)
}
