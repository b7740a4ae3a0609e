package models

// ClassDefinition is a recurring class offering. ID is assigned by the
// local store on insert; 0 means "not yet persisted".
type ClassDefinition struct {
	ID              int64   `db:"id" json:"id"`
	DayOfWeek       string  `db:"day_of_week" json:"day_of_week"`
	StartTime       string  `db:"start_time" json:"start_time"`
	Capacity        int     `db:"capacity" json:"capacity"`
	DurationMinutes int     `db:"duration_minutes" json:"duration_minutes"`
	Price           float64 `db:"price" json:"price"`
	ClassType       string  `db:"class_type" json:"class_type"`
	Description     *string `db:"description" json:"description,omitempty"`
	Equipment       *string `db:"equipment" json:"equipment,omitempty"`
	Instructor      string  `db:"instructor" json:"instructor"`
}

// DefaultInstructor is stored when no instructor was supplied.
const DefaultInstructor = "Unknown"
