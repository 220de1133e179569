package model

// Day is a consistent snapshot of one designer's appointments and blocks for one date.
type Day struct {
	DesignerID   string
	Date         Date
	Appointments []Appointment
	Blocks       []Block
}

type Designer struct {
	ID       string
	Name     string
	Slug     string
	Phone    string
	Bio      string
	PhotoURL string
	IsActive bool
}
