package model

const (
	StatusDone       = "Done"
	StatusInProgress = "InProgress"
)

// Statuses lists the accepted status values in display order.
var Statuses = []string{StatusDone, StatusInProgress}

// TaskLogEntry is one reported task. The table has no primary key and rows
// are never updated or deleted.
type TaskLogEntry struct {
	LogDate      string `gorm:"column:log_date;type:text"`
	Employee     string `gorm:"column:employee;type:text"`
	Department   string `gorm:"column:department;type:text"`
	TaskCategory string `gorm:"column:task_category;type:text"`
	TaskName     string `gorm:"column:task_name;type:text"`
	Minutes      int    `gorm:"column:minutes;type:integer"`
	Channel      string `gorm:"column:channel;type:text"`
	Priority     string `gorm:"column:priority;type:text"`
	Status       string `gorm:"column:status;type:text"`
	Note         string `gorm:"column:note;type:text"`
}

func (TaskLogEntry) TableName() string {
	return "task_log"
}

// EmployeeMinutes aggregates a day's entries for one employee.
type EmployeeMinutes struct {
	Employee string
	Entries  int
	Minutes  int
}
