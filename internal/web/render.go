package web

import (
	"embed"
	"html/template"
	"io"

	"daily-report/internal/model"
	"daily-report/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"statusLabel": statusLabel,
}).ParseFS(templatesFS, "templates/*.html"))

// Banner is the one-line result message above the form.
type Banner struct {
	Text  string
	Error bool
}

// PageData is everything the report page shows.
type PageData struct {
	Banner      *Banner
	FixedFields bool
	Form        service.ReportInput
	Employees   []string
	Categories  []model.TaskCategory
	Departments []string
	Channels    []string
	Priorities  []string
	Statuses    []string
	Entries     []model.TaskLogEntry
}

// ErrorData is shown instead of the page when the store cannot be read.
type ErrorData struct {
	Message string
	Hint    string
}

// RenderPage writes the report form and history. Every value passes through
// html/template's contextual escaping.
func RenderPage(w io.Writer, data PageData) error {
	return render(w, "index.html", data)
}

func RenderError(w io.Writer, data ErrorData) error {
	return render(w, "error.html", data)
}

func render(w io.Writer, name string, data any) error {
	return templates.ExecuteTemplate(w, name, data)
}

func statusLabel(status string) string {
	switch status {
	case model.StatusDone:
		return "Done"
	case model.StatusInProgress:
		return "In progress"
	default:
		return status
	}
}
