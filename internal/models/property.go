package models

// Property is a dashboard-managed unit.
type Property struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Location string `json:"location" yaml:"location"`
	Rooms    int    `json:"rooms" yaml:"rooms"`
	Image    string `json:"image,omitempty" yaml:"image"`
}

func (p Property) GetID() string { return p.ID }

type PropertyPatch struct {
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Location *string `json:"location,omitempty"`
	Rooms    *int    `json:"rooms,omitempty"`
	Image    *string `json:"image,omitempty"`
}
