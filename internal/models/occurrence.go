package models

import "time"

// ClassOccurrence is a single dated instance of a ClassDefinition.
// The instructor defaults to the owning definition's instructor but is
// independently editable.
type ClassOccurrence struct {
	ID         int64     `db:"id" json:"id"`
	ClassID    int64     `db:"class_id" json:"class_id"`
	Date       time.Time `db:"-" json:"date"`
	DateMillis int64     `db:"date_millis" json:"-"`
	Instructor string    `db:"instructor" json:"instructor"`
	Comments   *string   `db:"comments" json:"comments,omitempty"`
}

// SyncDates aligns Date and its stored epoch-millis form.
func (o *ClassOccurrence) SyncDates() {
	if !o.Date.IsZero() {
		o.DateMillis = o.Date.UnixMilli()
		return
	}
	if o.DateMillis != 0 {
		o.Date = time.UnixMilli(o.DateMillis).UTC()
	}
}
