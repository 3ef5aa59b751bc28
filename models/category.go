package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	Name     string    `gorm:"size:50;unique;not null"`
	Products []Product `gorm:"many2many:category_products;" json:",omitempty"`
}
