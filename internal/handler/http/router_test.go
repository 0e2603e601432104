package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret-pass"
)

var wib = time.FixedZone("WIB", 7*60*60)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Count int `json:"count"`
	} `json:"meta"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	clock   *clockwork.FakeClock
	hub     *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	// Monday 07:55 WIB
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 20, 7, 55, 0, 0, wib))

	records := memory.NewAttendanceRepository(clock)
	employees := memory.NewEmployeeRepository(clock,
		employee.Employee{ID: "E1", FullName: "Ani"},
		employee.Employee{ID: "E2", FullName: "Budi"},
	)
	hub := sse.NewHub()

	jwtSvc, err := jwt.NewJWTService("test-secret", time.Hour, clock)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	attendanceSvc := attendanceService.NewAttendanceService(records, employees, memory.NewEmployeeLocker(), clock, wib,
		attendanceService.WithPublisher(sse.NewAttendanceFeed(hub)))

	router := NewRouter(jwtSvc, RouterOptions{AllowedOrigins: []string{"*"}, Env: "test"}, Handlers{
		Health:     NewHealthHandler(nil),
		Auth:       NewAuthHandler(authService.NewAuthService(jwtSvc, adminEmail, string(hash))),
		Attendance: NewAttendanceHandler(attendanceSvc),
		Report:     NewReportHandler(reportService.NewReportService(records, employees)),
		Employee:   NewEmployeeHandler(employeeService.NewEmployeeService(employees)),
		Events:     NewEventsHandler(hub, clock),
	})
	return &testServer{handler: router, clock: clock, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`, "")
	require.Equal(t, http.StatusOK, code)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestMarkAttendance_FullDay(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-in"}`, "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Checked in successfully.", env.Message)

	var in struct {
		RecordID   string `json:"record_id"`
		Type       string `json:"type"`
		Status     string `json:"status"`
		TimeStatus string `json:"time_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &in))
	assert.NotEmpty(t, in.RecordID)
	assert.Equal(t, "check-in", in.Type)
	assert.Equal(t, "present", in.Status)
	assert.Equal(t, "Early", in.TimeStatus)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-in"}`, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	s.clock.Advance(5*time.Hour + 15*time.Minute)
	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-out"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance/employee/E1", "", "")
	require.Equal(t, http.StatusOK, code)
	var records []struct {
		ID       string  `json:"id"`
		CheckIn  string  `json:"check_in"`
		CheckOut *string `json:"check_out"`
		Status   string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, in.RecordID, records[0].ID)
	assert.Equal(t, "2024-05-20T00:55:00Z", records[0].CheckIn)
	require.NotNil(t, records[0].CheckOut)
	assert.Equal(t, "2024-05-20T06:10:00Z", *records[0].CheckOut)
	assert.Equal(t, "completed", records[0].Status)
}

func TestMarkAttendance_BadRequests(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request format", env.Error.Message)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"","type":""}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "employee_id")
	assert.Contains(t, env.Error.Details, "type")

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"break"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-out"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListByEmployee_InvalidRange(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/v1/attendance/employee/E1?start_date=2024-05-21&end_date=2024-05-20", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/v1/attendance/employee/E1?start_date=yesterday", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E2","type":"check-in"}`, "")

	code, env := s.do(t, http.MethodGet, "/api/v1/attendance/employee/E2/status", "", "")
	require.Equal(t, http.StatusOK, code)
	var status struct {
		HasCheckedIn bool `json:"has_checked_in"`
		CanCheckIn   bool `json:"can_check_in"`
		CanCheckOut  bool `json:"can_check_out"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.HasCheckedIn)
	assert.False(t, status.CanCheckIn)
	assert.True(t, status.CanCheckOut)
}

func TestListToday_PublicWithNames(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E2","type":"check-in"}`, "")
	_, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E9","type":"check-in"}`, "")

	code, env := s.do(t, http.MethodGet, "/api/v1/attendance/today", "", "")
	require.Equal(t, http.StatusOK, code)
	var records []struct {
		EmployeeID   string `json:"employee_id"`
		EmployeeName string `json:"employee_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 2)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Count)

	names := map[string]string{}
	for _, r := range records {
		names[r.EmployeeID] = r.EmployeeName
	}
	assert.Equal(t, map[string]string{"E2": "Budi", "E9": "Unknown"}, names)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)
	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/attendance", ""},
		{http.MethodGet, "/api/v1/attendance/top-performers", ""},
		{http.MethodDelete, "/api/v1/attendance/abc", ""},
		{http.MethodPost, "/api/v1/employees", `{"full_name":"Citra"}`},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			code, env := s.do(t, rt.method, rt.path, rt.body, "")
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.False(t, env.Success)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"`+adminEmail+`","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, markEnv := s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-in"}`, "")
	var marked struct {
		RecordID string `json:"record_id"`
	}
	require.NoError(t, json.Unmarshal(markEnv.Data, &marked))

	code, env := s.do(t, http.MethodGet, "/api/v1/attendance", "", token)
	require.Equal(t, http.StatusOK, code)
	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)

	s.clock.Advance(6 * time.Hour)
	_, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-out"}`, "")
	// the token clock moved with the fake clock
	token = s.login(t)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance/top-performers", "", token)
	require.Equal(t, http.StatusOK, code)
	var top struct {
		TopEarly []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"top_early"`
		TopOvertime []struct {
			ID            string  `json:"id"`
			OvertimeHours float64 `json:"overtime_hours"`
		} `json:"top_overtime"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top.TopEarly, 1)
	assert.Equal(t, "Ani", top.TopEarly[0].Name)
	require.Len(t, top.TopOvertime, 1)
	assert.InDelta(t, 1.0, top.TopOvertime[0].OvertimeHours, 1e-9)

	code, env = s.do(t, http.MethodDelete, "/api/v1/attendance/"+marked.RecordID, "", token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Attendance record deleted", env.Message)

	// deleting again is still a success
	code, _ = s.do(t, http.MethodDelete, "/api/v1/attendance/"+marked.RecordID, "", token)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestEmployees(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/employees", `{"full_name":"  Citra  "}`, token)
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Citra", created.FullName)

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/"+created.ID, "", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/employees/missing", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/employees", "", "")
	require.Equal(t, http.StatusOK, code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)

	code, _ = s.do(t, http.MethodPost, "/api/v1/employees", `{"full_name":" "}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestEvents_StreamsCheckIn(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/attendance/events?jwt="+token, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				if name != "" {
					return name, data
				}
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "connected", name)
	require.Equal(t, 1, s.hub.SubscriberCount(sse.AttendanceTopic))

	_, _ = s.do(t, http.MethodPost, "/api/v1/attendance/mark", `{"employee_id":"E1","type":"check-in"}`, "")

	name, data := readEvent()
	assert.Equal(t, "attendance.checked_in", name)
	var record struct {
		EmployeeID string `json:"employee_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &record))
	assert.Equal(t, "E1", record.EmployeeID)
	assert.Equal(t, "present", record.Status)
}

func TestEvents_RejectsMissingToken(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/v1/attendance/events", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestEvents_KeepAliveOnClockTick(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/attendance/events?jwt="+token, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)

	require.NoError(t, s.clock.BlockUntilContext(ctx, 1))
	s.clock.Advance(eventsKeepAlive)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if line == ": ping\n" {
			break
		}
	}
}
