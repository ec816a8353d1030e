package ui

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/me/examdesk/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatDate": model.FormatDate,
	"ago": func(s string) string {
		t := model.ParseDate(s)
		if t.IsZero() {
			return "-"
		}
		return humanize.Time(t)
	},
	"since": func(t time.Time) string {
		return humanize.RelTime(t, time.Now(), "ago", "from now")
	},
	"bytes": func(n int64) string {
		if n <= 0 {
			return "-"
		}
		return humanize.Bytes(uint64(n))
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"add": func(a, b int) int {
		return a + b
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
	"isReady": func(s model.ListStatus) bool {
		return s == model.ListStatusReady
	},
	"errText": func(err error) string {
		if err == nil {
			return ""
		}
		return errorText(err)
	},
}

// pageTemplates are parsed once; each holds the layout plus one view.
var pageTemplates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(views))
	for name, content := range views {
		tmpl := template.Must(template.New("layout").Funcs(templateFuncs).Parse(layout))
		template.Must(tmpl.New("pager").Parse(pager))
		template.Must(tmpl.New("studentTable").Parse(studentTable))
		template.Must(tmpl.New("content").Parse(content))
		out[name] = tmpl
	}
	return out
}()

// renderTemplate renders the named view inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	tmpl, ok := pageTemplates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	return tmpl.Execute(w, data)
}

const layout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body>
{{if .Authenticated}}
<nav>
  <a href="/">Dashboard</a>
  <a href="/students">Students</a>
  <a href="/exams">Exams</a>
  <a href="/images">Images</a>
  <span>session expires {{since .Session.ExpiresAt}}</span>
  <form action="/logout" method="POST" style="display:inline"><button type="submit">Logout</button></form>
</nav>
{{end}}
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<main>
{{template "content" .}}
</main>
</body>
</html>`

const studentTable = `{{$exams := .Exams}}
{{with .Students}}
{{if eq .Status "FAILED"}}<p class="error">Failed to fetch students: {{errText .Err}}</p>
{{else if .NotFound}}<p>Student not found</p>
{{else}}
<table>
<tr><th>Name</th><th>Registration No</th><th>Course</th><th>Admitted</th><th>Date of Birth</th><th></th></tr>
{{range .Items}}
<tr>
  <td><a href="/students/{{.Key}}">{{.Name}}</a></td>
  <td>{{.RegistrationNo}}</td>
  <td>{{.Course}}</td>
  <td>{{formatDate .DateOfAdmission}}</td>
  <td>{{formatDate .BirthDate}}</td>
  <td>
    <form action="/students/{{.Key}}/delete" method="POST" style="display:inline"><button type="submit">Delete</button></form>
    {{if $exams}}
    <form action="/students/{{.Key}}/assign" method="POST" style="display:inline">
      <select name="examId"><option value="">Select exam</option>{{range $exams}}<option value="{{.Key}}">{{.Title}}</option>{{end}}</select>
      <button type="submit">Assign</button>
    </form>
    {{end}}
  </td>
</tr>
{{else}}
<tr><td colspan="6">No students found.</td></tr>
{{end}}
</table>
{{end}}
{{end}}
{{template "pager" .}}`

const pager = `{{with .Pagination}}{{if gt .TotalPages 0}}
<p>Showing {{.First}} to {{.Last}} of {{comma .Total}} results (page {{.Page}} of {{.TotalPages}})</p>
<p>
{{if .HasPrev}}<a href="{{.PrevLink}}">Previous</a>{{end}}
{{if .HasNext}}<a href="{{.NextLink}}">Next</a>{{end}}
</p>
{{end}}{{end}}`

var views = map[string]string{
	"login": `<h1>Sign in</h1>
<form action="/login" method="POST">
  <input name="email" type="email" placeholder="Email" required>
  <input name="password" type="password" placeholder="Password" required>
  <button type="submit">Login</button>
</form>
<p><a href="/register">Create an account</a></p>`,

	"register": `<h1>Register</h1>
{{range .Errors}}<p class="error">{{.}}</p>{{end}}
<form action="/register" method="POST">
  <input name="email" type="email" placeholder="Email" value="{{.Email}}" required>
  <input name="password" type="password" placeholder="Password" required>
  <button type="submit">Register</button>
</form>
<p><a href="/login">Already registered? Sign in</a></p>`,

	"dashboard": `<h1>Dashboard</h1>
<p>Console started {{since .Uptime}}.</p>
{{if .ExamError}}<p class="error">Error fetching exams: {{.ExamError}}</p>{{end}}
{{template "studentTable" .}}`,

	"students": `<h1>Students</h1>
<form action="/students" method="GET">
  <input name="q" placeholder="Registration number" value="{{.Search}}">
  <button type="submit">Search</button>
  {{if .Search}}<a href="/students">Clear</a>{{end}}
</form>
<p><a href="/students/export.csv?page={{.Students.Query.Page}}">Export CSV</a></p>
{{template "studentTable" .}}
`,

	"student": `{{with .Student}}
<h1>{{.Name}}</h1>
{{if .ProfilePic}}<img src="{{.ProfilePic}}" alt="profile" width="120">{{end}}
{{if .CertificatePic}}<img src="{{.CertificatePic}}" alt="certificate" width="120">{{end}}
<form action="/students/{{$.ID}}" method="POST" enctype="multipart/form-data">
  <label>Name <input name="name" value="{{.Name}}" required></label>
  <label>Registration No <input name="registrationNo" value="{{.RegistrationNo}}" required></label>
  <label>Course <input name="course" value="{{.Course}}"></label>
  <label>Date of Admission <input name="dateOfAdmission" value="{{.DateOfAdmission}}"></label>
  <label>Course Duration <input name="courseDuration" value="{{.CourseDuration}}"></label>
  <label>Date of Birth <input name="dateOfBirth" value="{{.BirthDate}}"></label>
  <label>Mother's Name <input name="mothersName" value="{{.MothersName}}"></label>
  <label>Father's Name <input name="fathersName" value="{{.FathersName}}"></label>
  <label>Grade <input name="grade" value="{{.Grade}}"></label>
  <label>Address <input name="address" value="{{.Address}}"></label>
  <label>Profile picture <input name="profilePic" type="file" accept="image/*"></label>
  <label>Certificate <input name="certificatePic" type="file" accept="image/*"></label>
  <button type="submit">Save</button>
</form>
{{end}}
<p><a href="/students">Back to students</a></p>`,

	"exams": `<h1>Exams</h1>
<form action="/exams" method="POST">
  <input name="title" placeholder="Title" required>
  <input name="description" placeholder="Description">
  <button type="submit">Create exam</button>
</form>
<form action="/exams" method="GET">
  <input name="q" placeholder="Filter" value="{{.Search}}">
  <select name="sort">
    <option value="">Server order</option>
    <option value="title" {{if eq .Sort "title"}}selected{{end}}>Title</option>
    <option value="date" {{if eq .Sort "date"}}selected{{end}}>Date</option>
  </select>
  <button type="submit">Apply</button>
</form>
{{with .Exams}}
{{if eq .Status "FAILED"}}<p class="error">Error fetching exams: {{errText .Err}}</p>
{{else}}
<table>
<tr><th>Title</th><th>Description</th><th>Created</th><th></th></tr>
{{range .Items}}
<tr>
  <td><a href="/exams/{{.Key}}">{{.Title}}</a></td>
  <td>{{.Description}}</td>
  <td>{{ago .CreatedAt}}</td>
  <td><form action="/exams/{{.Key}}/delete" method="POST"><button type="submit">Delete</button></form></td>
</tr>
{{else}}
<tr><td colspan="4">No exams found.</td></tr>
{{end}}
</table>
{{end}}
{{end}}
{{template "pager" .}}`,

	"exam": `{{with .Exam}}
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<p>Created {{ago .CreatedAt}}</p>
<h2>Questions ({{len .Questions}})</h2>
<ol>
{{range .Questions}}
<li>{{.QuestionText}}
  <ul>{{range .Options}}<li>{{.}}</li>{{end}}</ul>
  <p>Answer: {{.CorrectAnswer}}</p>
</li>
{{end}}
</ol>
{{end}}
<h2>Add question</h2>
<form action="/exams/{{.ID}}/questions" method="POST">
  <input name="questionText" placeholder="Question" required>
  {{range seq 4}}<input name="option" placeholder="Option {{add . 1}}" required>{{end}}
  <input name="correctAnswer" placeholder="Correct answer" required>
  <button type="submit">Add</button>
</form>
<p><a href="/exams">Back to exams</a></p>`,

	"images": `<h1>Images</h1>
<form action="/images" method="GET">
  <select name="category">
    <option value="">All categories</option>
    {{range .Categories}}<option value="{{.}}" {{if eq . $.Category}}selected{{end}}>{{.}}</option>{{end}}
  </select>
  <button type="submit">Filter</button>
</form>
{{with .Images}}
{{if eq .Status "FAILED"}}<p class="error">Error fetching images: {{errText .Err}}</p>
{{else}}
<form action="/images/delete" method="POST">
<table>
<tr><th></th><th>Image</th><th>Category</th><th>Size</th><th>Uploaded</th></tr>
{{range .Items}}
<tr>
  <td><input type="checkbox" name="public_id" value="{{.PublicID}}"></td>
  <td><a href="{{.SecureURL}}">{{.PublicID}}</a></td>
  <td>{{.Category}}</td>
  <td>{{bytes .Bytes}}</td>
  <td>{{ago .CreatedAt}}</td>
</tr>
{{else}}
<tr><td colspan="5">No images found.</td></tr>
{{end}}
</table>
<button type="submit">Delete selected</button>
</form>
{{end}}
{{end}}
{{template "pager" .}}`,

	"error": `<h1>{{.Message}}</h1>
{{if .Detail}}<p>{{.Detail}}</p>{{end}}
<p><a href="/">Back to dashboard</a></p>`,
}
