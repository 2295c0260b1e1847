package model

import (
	"time"

	"github.com/jpark/addressbook-backend/pkg/geo"
	"gorm.io/gorm"
)

type Address struct {
	ID        uint           `gorm:"primaryKey" json:"id"`           // address ID, assigned by the store
	Street    string         `gorm:"size:200;not null" json:"street"` // street address
	City      string         `gorm:"size:100;not null;index" json:"city"`
	State     string         `gorm:"size:100;not null" json:"state"`
	ZipCode   string         `gorm:"size:20;not null" json:"zip_code"`
	Latitude  float64        `gorm:"not null" json:"latitude"`  // decimal degrees, -90..90
	Longitude float64        `gorm:"not null" json:"longitude"` // decimal degrees, -180..180
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // soft delete
}

func (Address) TableName() string {
	return "addresses"
}

// Coordinates returns the address location as a geo.Point.
func (a *Address) Coordinates() geo.Point {
	return geo.Point{Latitude: a.Latitude, Longitude: a.Longitude}
}
