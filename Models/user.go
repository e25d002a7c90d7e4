package Models

import "gorm.io/gorm"

// User is a staff account. Permission levels: 1 viewer, 3 manager,
// 4 administrator.
type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:255"`
	Username   string `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
}
