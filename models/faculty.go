package models

// Faculty is a staff member eligible to serve as adviser or panelist.
type Faculty struct {
	ID         uint    `gorm:"primaryKey;column:id" json:"id"`
	Name       string  `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`
	Title      *string `gorm:"column:title;size:255" json:"title,omitempty"`
	Department *string `gorm:"column:department;size:255" json:"department,omitempty"`
	AccountID  *uint   `gorm:"column:account_id;index" json:"account_id,omitempty"`
}

func (Faculty) TableName() string {
	return "faculty"
}

