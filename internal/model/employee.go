package model

// Employee is a row of the externally maintained employees table.
type Employee struct {
	Name string `gorm:"column:employee;type:text"`
}

func (Employee) TableName() string {
	return "employees"
}
