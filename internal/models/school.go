package models

import (
	"time"

	"gorm.io/gorm"
)

type School struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Code    string  `json:"code" gorm:"not null;size:20;uniqueIndex" validate:"required,min=1,max=20"`
	Address *string `json:"address" gorm:"type:text" validate:"omitempty,max=500"`
	Phone   *string `json:"phone" gorm:"size:20" validate:"omitempty,max=20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Students []Student `json:"students,omitempty" gorm:"foreignKey:SchoolID"`
	Exams    []Exam    `json:"exams,omitempty" gorm:"foreignKey:SchoolID"`
}

func (School) TableName() string {
	return "schools"
}
