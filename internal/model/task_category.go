package model

// TaskCategory is a row of the externally maintained task_master table.
type TaskCategory struct {
	Category string `gorm:"column:task_category;type:text"`
	Group    string `gorm:"column:task_category_group;type:text"`
}

func (TaskCategory) TableName() string {
	return "task_master"
}

// Label is the dropdown text, e.g. "BackOffice : DataEntry".
func (c TaskCategory) Label() string {
	return c.Group + " : " + c.Category
}
