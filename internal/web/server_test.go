package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"daily-report/internal/model"
	"daily-report/internal/repository"
	"daily-report/internal/service"
)

type testEnv struct {
	db      *gorm.DB
	handler http.Handler
}

func newTestEnv(t *testing.T, seed, fixed bool) testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "task.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	lookups := repository.NewLookupRepository(db)
	if seed {
		ctx := context.Background()
		if _, err := lookups.AddEmployees(ctx, []string{"Sato", "Abe"}); err != nil {
			t.Fatalf("seed employees: %v", err)
		}
		if _, err := lookups.AddCategories(ctx, []model.TaskCategory{
			{Category: "DataEntry", Group: "BackOffice"},
			{Category: "Refund", Group: "Sales"},
		}); err != nil {
			t.Fatalf("seed categories: %v", err)
		}
	}

	reports := service.NewReportService(lookups, repository.NewTaskLogRepository(db), fixed)
	srv := NewServer(reports, Options{
		Departments: []string{"Admin", "Support"},
		Channels:    []string{"Email", "Phone"},
		Priorities:  []string{"High", "Med", "Low"},
		Location:    time.UTC,
	})
	srv.now = func() time.Time { return time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC) }

	return testEnv{db: db, handler: srv.Routes()}
}

func (e testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (e testEnv) post(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) rows(t *testing.T) []model.TaskLogEntry {
	t.Helper()
	var entries []model.TaskLogEntry
	if err := e.db.Find(&entries).Error; err != nil {
		t.Fatalf("list rows: %v", err)
	}
	return entries
}

func validForm() url.Values {
	return url.Values{
		"log_date":      {"2024-10-01"},
		"employee":      {"Sato"},
		"department":    {"Support"},
		"task_category": {"DataEntry"},
		"task_name":     {"Enter sales data"},
		"minutes":       {"45"},
		"channel":       {"Phone"},
		"priority":      {"High"},
		"status":        {"InProgress"},
		"note":          {"waiting on figures"},
	}
}

func TestGetRendersFormAndHistory(t *testing.T) {
	env := newTestEnv(t, true, false)

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<form method="post"`,
		`<option value="Sato">Sato</option>`,
		`<option value="DataEntry">BackOffice : DataEntry</option>`,
		`<option value="Refund">Sales : Refund</option>`,
		`value="2024-10-01"`,
		`name="department"`,
		`name="channel"`,
		`name="note"`,
		"No reports yet.",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if strings.Contains(body, `role="status"`) {
		t.Fatalf("GET must not show a banner")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "script-src 'none'") {
		t.Fatalf("unexpected CSP %q", got)
	}
}

func TestPostStoresOneRowAndShowsIt(t *testing.T) {
	env := newTestEnv(t, true, false)

	rec := env.post(t, validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Report saved.") {
		t.Fatalf("missing success banner")
	}
	if !strings.Contains(body, "<td>Enter sales data</td>") || !strings.Contains(body, "<td>waiting on figures</td>") {
		t.Fatalf("new entry not listed")
	}

	rows := env.rows(t)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.Department != "Support" || got.Channel != "Phone" || got.Priority != "High" || got.Note != "waiting on figures" || got.Minutes != 45 {
		t.Fatalf("stored row = %#v", got)
	}
}

func TestPostEscapesUserText(t *testing.T) {
	env := newTestEnv(t, true, false)

	form := validForm()
	form.Set("task_name", "<script>x</script>")
	form.Set("note", `"><img src=x>`)
	rec := env.post(t, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>x</script>") || strings.Contains(body, "<img src=x>") {
		t.Fatalf("user text rendered as markup:\n%s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;x&lt;/script&gt;") {
		t.Fatalf("escaped task name not found")
	}
}

func TestPostMissingFieldsIsRejected(t *testing.T) {
	env := newTestEnv(t, true, false)

	form := validForm()
	form.Del("employee")
	form.Set("minutes", "ten")
	rec := env.post(t, form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "employee is required") || !strings.Contains(body, "minutes must be a whole number") {
		t.Fatalf("missing validation banner")
	}
	if !strings.Contains(body, `value="Enter sales data"`) {
		t.Fatalf("submitted values should be kept in the form")
	}
	if n := len(env.rows(t)); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
}

func TestPostWriteFailureKeepsPage(t *testing.T) {
	env := newTestEnv(t, true, false)
	if rec := env.post(t, validForm()); rec.Code != http.StatusOK {
		t.Fatalf("seed post failed: %d", rec.Code)
	}
	if err := env.db.Exec(`CREATE TRIGGER reject_insert BEFORE INSERT ON task_log BEGIN SELECT RAISE(ABORT, 'read only'); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	form := validForm()
	form.Set("task_name", "second task")
	rec := env.post(t, form)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to save the report.") {
		t.Fatalf("missing write failure banner")
	}
	if strings.Contains(body, "read only") || strings.Contains(body, "Connection error") {
		t.Fatalf("write failure must use the generic message")
	}
	if !strings.Contains(body, "<form") || !strings.Contains(body, "<td>Enter sales data</td>") {
		t.Fatalf("form and existing history should still render")
	}
	if n := len(env.rows(t)); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestMissingReferenceTableAbortsPage(t *testing.T) {
	env := newTestEnv(t, false, false)

	for _, rec := range []*httptest.ResponseRecorder{env.get(t, "/"), env.post(t, validForm())} {
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "no such table: employees") {
			t.Fatalf("raw error missing:\n%s", body)
		}
		if !strings.Contains(body, "Hint:") {
			t.Fatalf("missing table hint not shown")
		}
		if strings.Contains(body, "<form") || strings.Contains(body, "<table") {
			t.Fatalf("no form or table may be rendered on connection errors")
		}
	}
	if n := len(env.rows(t)); n != 0 {
		t.Fatalf("POST must not write when lookups fail, rows = %d", n)
	}
}

func TestFixedFieldsMode(t *testing.T) {
	env := newTestEnv(t, true, true)

	body := env.get(t, "/").Body.String()
	for _, field := range []string{`name="department"`, `name="channel"`, `name="priority"`, `name="note"`} {
		if strings.Contains(body, field) {
			t.Fatalf("fixed-field form must not render %s", field)
		}
	}

	form := validForm()
	form.Set("department", "Support")
	form.Set("priority", "High")
	rec := env.post(t, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "<th>Department</th>") {
		t.Fatalf("fixed-field history must use the short column set")
	}

	rows := env.rows(t)
	if len(rows) != 1 || rows[0].Department != "Admin" || rows[0].Priority != "Med" {
		t.Fatalf("stored rows = %#v", rows)
	}
	if rows[0].Channel != "" || rows[0].Note != "" {
		t.Fatalf("channel and note must be left unset: %#v", rows[0])
	}
}

func TestLatestFiveNewestFirst(t *testing.T) {
	env := newTestEnv(t, true, false)

	for _, d := range []string{"2024-09-28", "2024-09-30", "2024-09-25", "2024-09-29", "2024-09-27", "2024-09-26"} {
		form := validForm()
		form.Set("log_date", d)
		form.Set("task_name", "task "+d)
		if rec := env.post(t, form); rec.Code != http.StatusOK {
			t.Fatalf("post %s: %d", d, rec.Code)
		}
	}

	body := env.get(t, "/").Body.String()
	if strings.Contains(body, "task 2024-09-25") {
		t.Fatalf("oldest entry should not be listed")
	}
	prev := -1
	for _, d := range []string{"2024-09-30", "2024-09-29", "2024-09-28", "2024-09-27", "2024-09-26"} {
		idx := strings.Index(body, "<td>task "+d+"</td>")
		if idx < 0 {
			t.Fatalf("entry %s missing", d)
		}
		if idx < prev {
			t.Fatalf("entry %s out of order", d)
		}
		prev = idx
	}
}

func TestLegacyTextMinutesStillRenders(t *testing.T) {
	env := newTestEnv(t, true, false)
	if rec := env.post(t, validForm()); rec.Code != http.StatusOK {
		t.Fatalf("seed post failed: %d", rec.Code)
	}
	if err := env.db.Exec(`INSERT INTO task_log (log_date, employee, task_name, minutes, status) VALUES ('2024-10-02', 'Abe', 'legacy row', 'abc', 'Done')`).Error; err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	rec := env.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200:\n%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<td>legacy row</td>") || !strings.Contains(body, "<td>Enter sales data</td>") {
		t.Fatalf("history should list the legacy and the new row")
	}
	if !strings.Contains(body, "<form") {
		t.Fatalf("form missing")
	}

	rec = env.post(t, validForm())
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Report saved.") {
		t.Fatalf("post after legacy row = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false, false)
	rec := env.get(t, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRenderPageEscapesLookups(t *testing.T) {
	var sb strings.Builder
	err := RenderPage(&sb, PageData{
		Employees:  []string{`<b>Bob</b>`},
		Categories: []model.TaskCategory{{Category: `a"b`, Group: "<g>"}},
		Statuses:   model.Statuses,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()
	if strings.Contains(out, "<b>Bob</b>") || strings.Contains(out, "<g>") {
		t.Fatalf("lookup values rendered unescaped")
	}
	if !strings.Contains(out, "&lt;g&gt; : a&#34;b") {
		t.Fatalf("escaped category label not found")
	}
	if !strings.Contains(out, "In progress") {
		t.Fatalf("status label missing")
	}
}
