package model

import "time"

// Student is a student record as returned by the backend.
type Student struct {
	ID              ID     `json:"_id,omitempty"`
	AltID           ID     `json:"id,omitempty"`
	Name            string `json:"name" validate:"required"`
	RegistrationNo  string `json:"registrationNo" validate:"required"`
	Course          string `json:"course,omitempty"`
	DateOfAdmission string `json:"dateOfAdmission,omitempty"`
	CourseDuration  string `json:"courseDuration,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	DOB             string `json:"dob,omitempty"`
	MothersName     string `json:"mothersName,omitempty"`
	FathersName     string `json:"fathersName,omitempty"`
	Grade           string `json:"grade,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfilePic      string `json:"profilePic,omitempty"`
	CertificatePic  string `json:"certificatePic,omitempty"`
}

// Key returns the identifier used in /students/:id paths.
func (s Student) Key() string {
	if s.ID != "" {
		return s.ID.String()
	}
	return s.AltID.String()
}

// BirthDate returns the date of birth under whichever field the backend used.
func (s Student) BirthDate() string {
	if s.DateOfBirth != "" {
		return s.DateOfBirth
	}
	return s.DOB
}

// StudentUpdate carries the editable student fields plus the optional
// picture files for a multipart update.
type StudentUpdate struct {
	Student
	ProfilePicPath     string `json:"-"`
	CertificatePicPath string `json:"-"`
}

// HasFiles reports whether the update must be sent as multipart.
func (u StudentUpdate) HasFiles() bool {
	return u.ProfilePicPath != "" || u.CertificatePicPath != ""
}

// ExamAssignment assigns an exam to a student.
type ExamAssignment struct {
	StudentID string `json:"studentId" validate:"required"`
	ExamID    string `json:"examId" validate:"required"`
}

// dateLayouts are the date formats observed in student and exam payloads.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a backend date string. It returns the zero time for
// empty or unrecognized input.
func ParseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDate renders a backend date as yyyy-mm-dd, or "-" when it cannot
// be parsed.
func FormatDate(s string) string {
	t := ParseDate(s)
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
