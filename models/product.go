package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name        string          `gorm:"size:100;not null"`
	Description string          `gorm:"size:500"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       uint            `gorm:"not null"`
	ImageURL    string
	Categories  []Category `gorm:"many2many:category_products;"`
}

// Nomes das categorias do produto (usado nos templates)
func (p Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, category := range p.Categories {
		names = append(names, category.Name)
	}
	return names
}
