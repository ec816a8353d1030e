package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/examdesk/internal/session"
	"github.com/me/examdesk/pkg/model"
)

// backend is a fake REST backend recording what the CLI sent.
type backend struct {
	mu       sync.Mutex
	token    string
	assigned []map[string]string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// startTestBackend starts a fake backend and returns its API base URL.
func startTestBackend(t *testing.T) (string, *backend) {
	t.Helper()
	claims := jwt.MapClaims{"sub": "admin@example.org", "exp": time.Now().Add(2 * time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	b := &backend{token: tok}

	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+b.token {
				writeJSON(w, 401, map[string]string{"message": "unauthorized"})
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, 401, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, 200, map[string]string{"token": b.token})
	})
	mux.HandleFunc("GET /api/students", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{
			"data": []map[string]any{
				{"id": 1, "name": "Asha Rao", "registrationNo": "REG-001", "course": "BCA", "dateOfAdmission": "2023-07-01"},
				{"id": 2, "name": "Ravi Kumar", "registrationNo": "REG-002"},
			},
			"meta": map[string]any{"last_page": 1, "total": 2},
		})
	}))
	mux.HandleFunc("GET /api/students/{reg}", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("reg") == "REG-001" {
			writeJSON(w, 200, map[string]any{"data": map[string]any{"id": 1, "name": "Asha Rao", "registrationNo": "REG-001"}})
			return
		}
		writeJSON(w, 200, map[string]any{"data": nil})
	}))
	mux.HandleFunc("GET /api/exam/admin", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []map[string]any{
			{"_id": "e2", "title": "physics", "createdAt": "2024-02-01T00:00:00.000Z"},
			{"_id": "e1", "title": "Algebra", "createdAt": "2024-03-01T00:00:00.000Z"},
		})
	}))
	mux.HandleFunc("POST /api/exam/assign", authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.assigned = append(b.assigned, body)
		b.mu.Unlock()
		writeJSON(w, 200, map[string]string{"message": "ok"})
	}))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts.URL + "/api", b
}

// isolate points HOME and the working directory at temp dirs so the
// token store and config never touch the real ones.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, k := range []string{"EXAMDESK_SERVER", "EXAMDESK_TOKEN_STORE", "EXAMDESK_TOKEN_PATH", "EXAMDESK_LOG_FILE", "EXAMDESK_PAGE_SIZE"} {
		t.Setenv(k, "")
	}
	t.Setenv("EXAMDESK_LOG_LEVEL", "error")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	teardown()
	return buf.String(), err
}

func login(t *testing.T, server string) {
	t.Helper()
	out, err := runCLI(t, "", "--server", server, "login", "--email", "admin@example.org", "--password", "secret")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
}

func TestLoginAndWhoami(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)

	out, err := runCLI(t, "", "--server", server, "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "UNAUTHENTICATED") {
		t.Errorf("whoami before login:\n%s", out)
	}

	out, err = runCLI(t, "", "--server", server, "login", "--email", "admin@example.org", "--password", "secret")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Login successful") || !strings.Contains(out, "Session expires") {
		t.Errorf("login output:\n%s", out)
	}

	out, _ = runCLI(t, "", "--server", server, "whoami")
	if !strings.Contains(out, "VALID") || strings.Contains(out, "UNAUTHENTICATED") {
		t.Errorf("whoami after login:\n%s", out)
	}
}

func TestLoginPromptsForCredentials(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)

	out, err := runCLI(t, "admin@example.org\nsecret\n", "--server", server, "login")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Email: ") || !strings.Contains(out, "Password: ") {
		t.Errorf("expected prompts:\n%s", out)
	}
}

func TestLoginBadPassword(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	_, err := runCLI(t, "", "--server", server, "login", "--email", "admin@example.org", "--password", "nope")
	if !model.IsUnauthorized(err) {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestProtectedCommandsRequireLogin(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)

	for _, args := range [][]string{
		{"students", "list"},
		{"exams", "list"},
		{"images", "list"},
		{"students", "assign", "s1", "--exam", "e1"},
	} {
		_, err := runCLI(t, "", append([]string{"--server", server}, args...)...)
		if !errors.Is(err, session.ErrNotAuthenticated) {
			t.Errorf("%v: err = %v, want ErrNotAuthenticated", args, err)
		}
	}
}

func TestStudentsList(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "students", "list")
	if err != nil {
		t.Fatalf("students list: %v\n%s", err, out)
	}
	for _, want := range []string{"Asha Rao", "REG-002", "2023-07-01", "Showing 1 to 2 of 2 results"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStudentsFind(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "students", "find", "REG-001")
	if err != nil || !strings.Contains(out, "Asha Rao") {
		t.Errorf("find REG-001: %v\n%s", err, out)
	}

	out, err = runCLI(t, "", "--server", server, "students", "find", "REG-404")
	if err != nil {
		t.Fatalf("not found must not fail: %v", err)
	}
	if !strings.Contains(out, "Student not found.") {
		t.Errorf("find REG-404:\n%s", out)
	}
}

func TestStudentsExport(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "students", "export")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(".", "student_data.csv"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "Asha Rao") {
		t.Errorf("csv:\n%s", data)
	}
}

func TestStudentsAssign(t *testing.T) {
	isolate(t)
	server, b := startTestBackend(t)
	login(t, server)

	_, err := runCLI(t, "", "--server", server, "students", "assign", "1")
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("assign without exam: err = %v", err)
	}

	out, err := runCLI(t, "", "--server", server, "students", "assign", "1", "--exam", "e1")
	if err != nil || !strings.Contains(out, "Exam Assigned Successfully") {
		t.Fatalf("assign: %v\n%s", err, out)
	}
	if len(b.assigned) != 1 || b.assigned[0]["examId"] != "e1" {
		t.Errorf("backend saw %v", b.assigned)
	}
}

func TestExamsListSorted(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "exams", "list", "--sort", "title")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "Algebra") > strings.Index(out, "physics") {
		t.Errorf("title sort wrong:\n%s", out)
	}

	out, _ = runCLI(t, "", "--server", server, "exams", "list", "--sort", "date")
	if strings.Index(out, "physics") > strings.Index(out, "Algebra") {
		t.Errorf("date sort wrong:\n%s", out)
	}

	if _, err := runCLI(t, "", "--server", server, "exams", "list", "--sort", "size"); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestExamsListPage(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "--page-size", "1", "exams", "list", "--page", "2")
	if err != nil {
		t.Fatalf("exams list --page 2: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Algebra") || strings.Contains(out, "physics") {
		t.Errorf("page 2 should hold only the second exam:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2 to 2 of 2 results (page 2 of 2)") {
		t.Errorf("pager line missing:\n%s", out)
	}
}

func TestQuestionsCreateValidation(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	_, err := runCLI(t, "", "--server", server, "questions", "create",
		"--exam", "e1", "--text", "2+2?", "--option", "3", "--option", "4", "--option", "5", "--answer", "4")
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("three options: err = %v, want validation failure", err)
	}
}

func TestLogout(t *testing.T) {
	isolate(t)
	server, _ := startTestBackend(t)
	login(t, server)

	if out, err := runCLI(t, "", "--server", server, "logout"); err != nil || !strings.Contains(out, "Logged out") {
		t.Fatalf("logout: %v\n%s", err, out)
	}
	_, err := runCLI(t, "", "--server", server, "students", "list")
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestSQLiteTokenStore(t *testing.T) {
	isolate(t)
	t.Setenv("EXAMDESK_TOKEN_STORE", "sqlite")
	server, _ := startTestBackend(t)
	login(t, server)

	out, err := runCLI(t, "", "--server", server, "students", "list")
	if err != nil || !strings.Contains(out, "Asha Rao") {
		t.Errorf("students list with sqlite store: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".examdesk", "examdesk.db")); err != nil {
		t.Errorf("sqlite store not created: %v", err)
	}
}
