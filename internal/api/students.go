package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/examdesk/pkg/model"
)

// ListStudentsRaw fetches one page of students and returns the body
// undecoded; the listing adapters pick the response shape apart.
func (c *Client) ListStudentsRaw(ctx context.Context, page, limit int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	req, err := jsonRequest("list students", http.MethodGet, "/students?"+q.Encode(), true, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// GetStudent fetches one student by backend id.
func (c *Client) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	body, err := c.getRaw(ctx, "get student", "/students/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeStudent("get student", body)
}

// FindStudentByRegistration looks a student up by exact registration
// number. A missing student is (nil, nil), not an error.
func (c *Client) FindStudentByRegistration(ctx context.Context, registrationNo string) (*model.Student, error) {
	const op = "find student"
	if registrationNo == "" {
		return nil, model.NewValidationError(op, "registration number is required")
	}
	body, err := c.getRaw(ctx, op, "/students/"+url.PathEscape(registrationNo))
	if model.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStudent(op, body)
}

// UpdateStudent saves student fields. When picture files are attached the
// update goes out as multipart with profilePic/certificatePic parts.
func (c *Client) UpdateStudent(ctx context.Context, id string, upd model.StudentUpdate) error {
	const op = "update student"
	if err := c.check(op, upd); err != nil {
		return err
	}
	path := "/students/" + url.PathEscape(id)
	if !upd.HasFiles() {
		return c.call(ctx, op, http.MethodPut, path, true, upd.Student, nil)
	}

	s := upd.Student
	fields := [][2]string{
		{"name", s.Name},
		{"registrationNo", s.RegistrationNo},
		{"course", s.Course},
		{"dateOfAdmission", s.DateOfAdmission},
		{"courseDuration", s.CourseDuration},
		{"dateOfBirth", s.BirthDate()},
		{"mothersName", s.MothersName},
		{"fathersName", s.FathersName},
		{"grade", s.Grade},
		{"address", s.Address},
	}
	var files []formFile
	if upd.ProfilePicPath != "" {
		files = append(files, formFile{field: "profilePic", path: upd.ProfilePicPath})
	}
	if upd.CertificatePicPath != "" {
		files = append(files, formFile{field: "certificatePic", path: upd.CertificatePicPath})
	}
	req, err := multipartRequest(op, http.MethodPut, path, fields, files)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

// DeleteStudent deletes a student by backend id.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.call(ctx, "delete student", http.MethodDelete, "/students/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) getRaw(ctx context.Context, op, path string) ([]byte, error) {
	req, err := jsonRequest(op, http.MethodGet, path, true, nil)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// decodeStudent accepts a bare student object or one wrapped as
// {"data": {...}}. An empty or null payload means no student.
func decodeStudent(op string, body []byte) (*model.Student, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		if string(body) == "null" || len(body) == 0 {
			return nil, nil
		}
		return nil, model.NewDecodeError(op, fmt.Errorf("parse student: %w", err))
	}
	if wrapper == nil {
		return nil, nil
	}
	if data, ok := wrapper["data"]; ok {
		body = data
		if string(data) == "null" {
			return nil, nil
		}
	}
	var s model.Student
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, model.NewDecodeError(op, fmt.Errorf("parse student: %w", err))
	}
	if s.Key() == "" && s.RegistrationNo == "" && s.Name == "" {
		return nil, nil
	}
	return &s, nil
}
