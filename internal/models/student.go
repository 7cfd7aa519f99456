package models

import (
	"time"

	"gorm.io/gorm"
)

type Student struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	SchoolID    uint   `json:"school_id" gorm:"not null;index:idx_students_school_code,unique"`
	StudentCode string `json:"student_code" gorm:"not null;size:20;index:idx_students_school_code,unique" validate:"required,min=1,max=20"`
	FirstName   string `json:"first_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Classroom   string `json:"classroom" gorm:"not null;size:50;index" validate:"required,min=1,max=50"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	School School `json:"-" gorm:"foreignKey:SchoolID"`
}

func (Student) TableName() string {
	return "students"
}

// FullName is the display name used in statistics feeds and exports.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
