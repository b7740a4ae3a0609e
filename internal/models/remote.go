package models

// RemoteRecord is the wire form pushed to the remote store: a flat copy
// of a ClassDefinition plus a snapshot of its occurrences at push time.
// It keeps no link back to local storage.
type RemoteRecord struct {
	ID              int64              `json:"id"`
	DayOfWeek       string             `json:"day_of_week"`
	StartTime       string             `json:"start_time"`
	Capacity        int                `json:"capacity"`
	DurationMinutes int                `json:"duration_minutes"`
	Price           float64            `json:"price"`
	ClassType       string             `json:"class_type"`
	Description     *string            `json:"description,omitempty"`
	Equipment       *string            `json:"equipment,omitempty"`
	Instructor      string             `json:"instructor"`
	Occurrences     []RemoteOccurrence `json:"occurrences"`
}

// RemoteOccurrence is the embedded occurrence copy inside a RemoteRecord.
type RemoteOccurrence struct {
	ID         int64   `json:"id"`
	DateMillis int64   `json:"date"`
	Instructor string  `json:"instructor"`
	Comments   *string `json:"comments,omitempty"`
}

// NewRemoteRecord snapshots a definition and its occurrences into wire form.
func NewRemoteRecord(def ClassDefinition, occurrences []ClassOccurrence) RemoteRecord {
	rec := RemoteRecord{
		ID:              def.ID,
		DayOfWeek:       def.DayOfWeek,
		StartTime:       def.StartTime,
		Capacity:        def.Capacity,
		DurationMinutes: def.DurationMinutes,
		Price:           def.Price,
		ClassType:       def.ClassType,
		Description:     def.Description,
		Equipment:       def.Equipment,
		Instructor:      def.Instructor,
		Occurrences:     make([]RemoteOccurrence, 0, len(occurrences)),
	}
	for _, occ := range occurrences {
		occ.SyncDates()
		rec.Occurrences = append(rec.Occurrences, RemoteOccurrence{
			ID:         occ.ID,
			DateMillis: occ.DateMillis,
			Instructor: occ.Instructor,
			Comments:   occ.Comments,
		})
	}
	return rec
}
