package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Point is a single click coordinate on the reference image.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GraphicalPassword is the stored graphical credential: the reference image
// the user picked and the click points they registered on it. Points are
// stored in clear; they are matched with pixel tolerance, so hashing them
// would defeat the comparison.
type GraphicalPassword struct {
	ImageID string  `json:"imageId" validate:"required"`
	Points  []Point `json:"points" validate:"required"`
}

// Value serializes the graphical password to JSON for storage.
func (g GraphicalPassword) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan deserializes the graphical password from its stored JSON form.
func (g *GraphicalPassword) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("cannot scan %T into GraphicalPassword", value)
	}
}

// User represents a registered principal with all authentication factors.
type User struct {
	ID                string            `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name              string            `json:"name" gorm:"type:varchar(100)" validate:"required"`
	Email             string            `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password          string            `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash once stored
	ColorPreference   string            `json:"colorPreference" gorm:"type:varchar(50)" validate:"required"`
	SportPreference   string            `json:"sportPreference" gorm:"type:varchar(50)" validate:"required"`
	GraphicalPassword GraphicalPassword `json:"graphicalPassword" gorm:"type:text" validate:"required"`
	Role              string            `json:"role" gorm:"type:varchar(10);default:user"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// Sanitized returns a copy safe to hand to clients: the password hash is
// already hidden by the json tag, but the graphical click points must be
// stripped too since they are stored in clear.
func (u User) Sanitized() User {
	u.Password = ""
	u.GraphicalPassword.Points = nil
	return u
}
