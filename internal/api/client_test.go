package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/me/examdesk/pkg/model"
)

// staticTokens is a TokenSource that records invalidations.
type staticTokens struct {
	mu          sync.Mutex
	token       string
	invalidated bool
}

func (s *staticTokens) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", errors.New("not authenticated")
	}
	return s.token, nil
}

func (s *staticTokens) Invalidate(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
	s.token = ""
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient starts a fake backend serving mux and returns a client
// pointed at it.
func newTestClient(t *testing.T, mux http.Handler, opts ...Option) (*Client, *staticTokens) {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	tokens := &staticTokens{token: "tok-123"}
	return NewClient(ts.URL+"/api/", tokens, testLogger(), opts...), tokens
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_SendsBearerAndRequestID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exam/admin", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		writeJSON(w, 200, []map[string]any{{"_id": "e1", "title": "Algebra"}})
	})
	c, _ := newTestClient(t, mux)

	exams, err := c.ListExams(context.Background())
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 1 || exams[0].Title != "Algebra" || exams[0].Key() != "e1" {
		t.Errorf("exams = %+v", exams)
	}
}

func TestClient_HTTPErrorCarriesBackendMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/exam/assign", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]any{"errors": []map[string]string{{"msg": "Exam already assigned"}}})
	})
	c, _ := newTestClient(t, mux)

	err := c.AssignExam(context.Background(), model.ExamAssignment{StudentID: "s1", ExamID: "e1"})
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Kind != model.KindHTTP || apiErr.StatusCode != 400 {
		t.Errorf("kind/status = %s/%d", apiErr.Kind, apiErr.StatusCode)
	}
	if apiErr.Message != "Exam already assigned" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_AssignRequiresExamSelection(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	err := c.AssignExam(context.Background(), model.ExamAssignment{StudentID: "s1"})
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestClient_UnauthorizedInvalidatesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/students/s1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]string{"message": "jwt expired"})
	})
	c, tokens := newTestClient(t, mux)

	err := c.DeleteStudent(context.Background(), "s1")
	if !model.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	if !tokens.invalidated {
		t.Error("401 should invalidate the session")
	}
}

func TestClient_TimeoutIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/get-images", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c, _ := newTestClient(t, mux, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.ListImages(context.Background())
	apiErr, ok := model.AsAPIError(err)
	if !ok || apiErr.Kind != model.KindNetwork {
		t.Fatalf("err = %v, want network failure", err)
	}
	if !strings.Contains(apiErr.Message, "timed out") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(url, &staticTokens{token: "t"}, testLogger())
	_, err := c.ListExams(context.Background())
	if !model.IsKind(err, model.KindNetwork) {
		t.Errorf("err = %v, want network failure", err)
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/exam/admin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})
	c, _ := newTestClient(t, mux)
	_, err := c.ListExams(context.Background())
	if !model.IsKind(err, model.KindDecode) {
		t.Errorf("err = %v, want decode failure", err)
	}
}

func TestClient_NoTokenFailsBeforeRequest(t *testing.T) {
	hit := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hit = true })
	c, tokens := newTestClient(t, mux)
	tokens.token = ""

	if _, err := c.ListExams(context.Background()); err == nil {
		t.Fatal("expected error without a token")
	}
	if hit {
		t.Error("request should not reach the backend")
	}
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var creds model.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "admin@example.org" || creds.Password != "pw" {
			writeJSON(w, 401, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, 200, map[string]string{"token": "jwt-token"})
	})
	c, _ := newTestClient(t, mux)

	tok, err := c.Login(context.Background(), model.Credentials{Email: "admin@example.org", Password: "pw"})
	if err != nil || tok != "jwt-token" {
		t.Fatalf("Login = %q, %v", tok, err)
	}

	_, err = c.Login(context.Background(), model.Credentials{Email: "admin@example.org", Password: "bad"})
	if !model.IsUnauthorized(err) {
		t.Errorf("bad password err = %v", err)
	}

	_, err = c.Login(context.Background(), model.Credentials{Email: "not-an-email", Password: "pw"})
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("invalid email err = %v, want validation failure", err)
	}
}

func TestRegister_SurfacesEachMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]any{"errors": []map[string]string{
			{"msg": "Email already exists", "path": "email"},
			{"msg": "Password must be 6 characters", "path": "password"},
		}})
	})
	c, _ := newTestClient(t, mux)

	err := c.Register(context.Background(), model.Credentials{Email: "a@b.co", Password: "x"})
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		t.Fatalf("err = %v", err)
	}
	if msgs := apiErr.Messages(); len(msgs) != 2 {
		t.Errorf("Messages() = %v, want 2 entries", msgs)
	}
}

func TestFindStudentByRegistration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students/{reg}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("reg") {
		case "REG-001":
			writeJSON(w, 200, map[string]any{"_id": "s1", "name": "Asha", "registrationNo": "REG-001"})
		case "REG-002":
			writeJSON(w, 200, map[string]any{"data": map[string]any{"id": 7, "name": "Ravi", "registrationNo": "REG-002"}})
		case "REG-NULL":
			writeJSON(w, 200, map[string]any{"data": nil})
		default:
			writeJSON(w, 404, map[string]string{"message": "Student not found"})
		}
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	s, err := c.FindStudentByRegistration(ctx, "REG-001")
	if err != nil || s == nil || s.Key() != "s1" {
		t.Errorf("REG-001 = %+v, %v", s, err)
	}
	s, err = c.FindStudentByRegistration(ctx, "REG-002")
	if err != nil || s == nil || s.Key() != "7" {
		t.Errorf("REG-002 (wrapped) = %+v, %v", s, err)
	}
	for _, reg := range []string{"REG-404", "REG-NULL"} {
		s, err = c.FindStudentByRegistration(ctx, reg)
		if err != nil || s != nil {
			t.Errorf("%s = %+v, %v; want nil, nil", reg, s, err)
		}
	}
}

func TestListStudentsRaw_Query(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "3" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})
	c, _ := newTestClient(t, mux)
	body, err := c.ListStudentsRaw(context.Background(), 3, 10)
	if err != nil || string(body) != "[]" {
		t.Errorf("ListStudentsRaw = %s, %v", body, err)
	}
}

func TestUpdateStudent_Multipart(t *testing.T) {
	dir := t.TempDir()
	pic := filepath.Join(dir, "me.png")
	if err := os.WriteFile(pic, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/students/s1", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("name") != "Asha" {
			t.Errorf("name = %q", r.FormValue("name"))
		}
		f, hdr, err := r.FormFile("profilePic")
		if err != nil {
			t.Fatalf("profilePic: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "me.png" || string(data) != "png-bytes" {
			t.Errorf("file = %s %q", hdr.Filename, data)
		}
		w.WriteHeader(200)
	})
	c, _ := newTestClient(t, mux)

	upd := model.StudentUpdate{
		Student:        model.Student{Name: "Asha", RegistrationNo: "REG-001"},
		ProfilePicPath: pic,
	}
	if err := c.UpdateStudent(context.Background(), "s1", upd); err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
}

func TestUpdateStudent_JSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/students/s1", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var s model.Student
		json.NewDecoder(r.Body).Decode(&s)
		if s.Grade != "A" {
			t.Errorf("grade = %q", s.Grade)
		}
	})
	c, _ := newTestClient(t, mux)
	upd := model.StudentUpdate{Student: model.Student{Name: "Asha", RegistrationNo: "REG-001", Grade: "A"}}
	if err := c.UpdateStudent(context.Background(), "s1", upd); err != nil {
		t.Fatal(err)
	}

	err := c.UpdateStudent(context.Background(), "s1", model.StudentUpdate{})
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("empty update err = %v, want validation failure", err)
	}
}

func TestCreateQuestion_Validation(t *testing.T) {
	var got model.Question
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/questions/create_question", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, 201, map[string]string{"message": "created"})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	valid := model.Question{
		ExamID:        "e1",
		QuestionText:  "2+2?",
		Options:       []string{"3", "4", "5", "22"},
		CorrectAnswer: "4",
	}
	if err := c.CreateQuestion(ctx, valid); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if got.QuestionText != "2+2?" {
		t.Errorf("backend saw %+v", got)
	}

	bad := []model.Question{
		{QuestionText: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		{ExamID: "e1", QuestionText: "q", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{ExamID: "e1", QuestionText: "q", Options: []string{"a", "b", "", "d"}, CorrectAnswer: "a"},
		{ExamID: "e1", QuestionText: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "z"},
	}
	for i, q := range bad {
		if err := c.CreateQuestion(ctx, q); !model.IsKind(err, model.KindValidation) {
			t.Errorf("bad[%d] err = %v, want validation failure", i, err)
		}
	}
}

func TestImportQuestions(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "questions.xlsx")
	os.WriteFile(sheet, []byte("PK\x03\x04"), 0o600)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/questions/create_question", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file part: %v", err)
		}
	})
	c, _ := newTestClient(t, mux)

	if err := c.ImportQuestions(context.Background(), sheet); err != nil {
		t.Fatalf("ImportQuestions: %v", err)
	}
	if err := c.ImportQuestions(context.Background(), filepath.Join(dir, "questions.csv")); !model.IsKind(err, model.KindValidation) {
		t.Errorf("csv import err = %v, want validation failure", err)
	}
}

func TestImages(t *testing.T) {
	var deleted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/get-images", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"images": []map[string]any{
			{"public_id": "grtc/gallery/a", "secure_url": "https://cdn/a.jpg"},
			{"public_id": "loose"},
		}})
	})
	mux.HandleFunc("DELETE /api/delete-images", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&deleted)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	imgs, err := c.ListImages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if imgs[0].Category != "gallery" || imgs[1].Category != model.UncategorizedImage {
		t.Errorf("categories = %q, %q", imgs[0].Category, imgs[1].Category)
	}

	if err := c.DeleteImage(ctx, "grtc/gallery/a"); err != nil {
		t.Fatal(err)
	}
	if deleted["public_id"] != "grtc/gallery/a" {
		t.Errorf("single delete body = %v", deleted)
	}
	if err := c.DeleteImages(ctx, []string{"x", "y"}); err != nil {
		t.Fatal(err)
	}
	if ids, ok := deleted["public_ids"].([]any); !ok || len(ids) != 2 {
		t.Errorf("bulk delete body = %v", deleted)
	}
	if err := c.DeleteImages(ctx, nil); !model.IsKind(err, model.KindValidation) {
		t.Errorf("empty bulk delete err = %v", err)
	}
}

func TestUploadImages(t *testing.T) {
	dir := t.TempDir()
	jpg := filepath.Join(dir, "a.jpg")
	os.WriteFile(jpg, []byte("jpg"), 0o600)
	gif := filepath.Join(dir, "b.gif")
	os.WriteFile(gif, []byte("gif"), 0o600)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bulk-images", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("image_category") != "gallery" {
			t.Errorf("category = %q", r.FormValue("image_category"))
		}
		if n := len(r.MultipartForm.File["images"]); n != 1 {
			t.Errorf("images = %d", n)
		}
		writeJSON(w, 200, map[string]string{"message": "1 image uploaded"})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	msg, err := c.UploadImages(ctx, model.ImageUpload{Category: "gallery", Paths: []string{jpg}})
	if err != nil || msg != "1 image uploaded" {
		t.Errorf("UploadImages = %q, %v", msg, err)
	}

	cases := []model.ImageUpload{
		{Category: "gallery"},
		{Paths: []string{jpg}},
		{Category: "gallery", Paths: []string{gif}},
	}
	for i, up := range cases {
		if _, err := c.UploadImages(ctx, up); !model.IsKind(err, model.KindValidation) {
			t.Errorf("case %d err = %v, want validation failure", i, err)
		}
	}
}

func TestSearchExams_LowercasesName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/exam/getExamByName", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["examName"] != "final algebra" {
			t.Errorf("examName = %q", body["examName"])
		}
		writeJSON(w, 200, []map[string]any{{"_id": "e9", "title": "Final Algebra"}})
	})
	c, _ := newTestClient(t, mux)
	exams, err := c.SearchExams(context.Background(), "  Final Algebra ")
	if err != nil || len(exams) != 1 {
		t.Errorf("SearchExams = %+v, %v", exams, err)
	}
}
