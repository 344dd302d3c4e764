package model

import (
	"gorm.io/gorm"
)

// Brewery name uniqueness is case-insensitive at the matching layer; the
// storage index guards the duplicate-creation race between concurrent
// submissions referencing the same new brewery.
type Brewery struct {
	gorm.Model
	Name string `gorm:"uniqueIndex"`
}
