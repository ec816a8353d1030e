package model

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  ID
	}{
		{`"65af01"`, "65af01"},
		{`42`, "42"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.input, err)
		}
		if id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.want)
		}
	}

	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestStudent_KeyAndBirthDate(t *testing.T) {
	var mongo Student
	if err := json.Unmarshal([]byte(`{"_id":"abc","name":"Asha","dob":"2001-02-03"}`), &mongo); err != nil {
		t.Fatal(err)
	}
	if mongo.Key() != "abc" {
		t.Errorf("Key() = %q, want abc", mongo.Key())
	}
	if mongo.BirthDate() != "2001-02-03" {
		t.Errorf("BirthDate() = %q", mongo.BirthDate())
	}

	var sql Student
	if err := json.Unmarshal([]byte(`{"id":17,"name":"Ravi","dateOfBirth":"1999-09-09"}`), &sql); err != nil {
		t.Fatal(err)
	}
	if sql.Key() != "17" {
		t.Errorf("Key() = %q, want 17", sql.Key())
	}
	if sql.BirthDate() != "1999-09-09" {
		t.Errorf("BirthDate() = %q", sql.BirthDate())
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"2024-03-05T10:00:00.000Z", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"", "-"},
		{"not a date", "-"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.input); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategoryFromPublicID(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"grtc/certificates/abc123", "certificates"},
		{"grtc/gallery/x", "gallery"},
		{"loose", UncategorizedImage},
		{"grtc//x", UncategorizedImage},
	}
	for _, tt := range tests {
		if got := CategoryFromPublicID(tt.input); got != tt.want {
			t.Errorf("CategoryFromPublicID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestQuestion_HasCorrectOption(t *testing.T) {
	q := Question{Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c"}
	if !q.HasCorrectOption() {
		t.Error("expected c to be a valid answer")
	}
	q.CorrectAnswer = "e"
	if q.HasCorrectOption() {
		t.Error("e is not an option")
	}
}
