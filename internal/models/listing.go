package models

// Listing is a unit shown on the public storefront.
type Listing struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Location    string `json:"location" yaml:"location"`
	Price       int64  `json:"price" yaml:"price"`
	Beds        int    `json:"beds" yaml:"beds"`
	Baths       int    `json:"baths" yaml:"baths"`
	Image       string `json:"image" yaml:"image"`
	Verified    bool   `json:"verified" yaml:"verified"`
	Description string `json:"description" yaml:"description"`
}

func (l Listing) GetID() string { return l.ID }

// Capacity is the number of tenants the unit holds. Studios (0 beds) hold one.
func (l Listing) Capacity() int {
	if l.Beds > 0 {
		return l.Beds
	}
	return 1
}

type Location struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region" yaml:"region"`
	Image  string `json:"image" yaml:"image"`
}

func (l Location) GetID() string { return l.ID }

// Notification is a storefront feed entry.
type Notification struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}
