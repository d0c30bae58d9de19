package agenda

import "time"

type Recurrence struct {
	ID                 int        `db:"id" json:"id"`
	DayOfWeek          int        `db:"day_of_week" json:"day_of_week"`
	Time               string     `db:"time" json:"time"`
	StartDate          time.Time  `db:"start_date" json:"start_date"`
	EndDate            *time.Time `db:"end_date" json:"end_date,omitempty"`
	ClassID            int        `db:"class_id" json:"class_id"`
	CoachID            int        `db:"coach_id" json:"coach_id"`
	LocationFacilityID int        `db:"location_facility_id" json:"location_facility_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type Agenda struct {
	ID                 int        `db:"id" json:"id"`
	Time               time.Time  `db:"time" json:"time"`
	ClassID            int        `db:"class_id" json:"class_id"`
	CoachID            int        `db:"coach_id" json:"coach_id"`
	LocationFacilityID int        `db:"location_facility_id" json:"location_facility_id"`
	AgendaRecurrenceID *int       `db:"agenda_recurrence_id" json:"agenda_recurrence_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Schedule is an agenda joined with its class, coach and room, plus the
// current seat count.
type Schedule struct {
	Agenda
	ClassName    string `db:"class_name" json:"class_name"`
	Duration     int    `db:"duration" json:"duration"`
	ClassTypeID  int    `db:"class_type_id" json:"class_type_id"`
	ClassType    string `db:"class_type" json:"class_type"`
	CoachName    string `db:"coach_name" json:"coach_name"`
	FacilityName string `db:"facility_name" json:"facility_name"`
	LocationID   int    `db:"location_id" json:"location_id"`
	LocationName string `db:"location_name" json:"location_name"`
	Slot         int    `db:"slot" json:"slot"`
	BookedCount  int    `db:"booked_count" json:"booked_count"`
	Available    int    `db:"-" json:"available"`
}

func (s *Schedule) fillAvailability() {
	s.Available = s.Slot - s.BookedCount
	if s.Available < 0 {
		s.Available = 0
	}
}

type AgendaRequest struct {
	Time               time.Time `json:"time" binding:"required" example:"2026-01-05T07:00:00+07:00"`
	ClassID            int       `json:"class_id" binding:"required,gt=0"`
	CoachID            int       `json:"coach_id" binding:"required,gt=0"`
	LocationFacilityID int       `json:"location_facility_id" binding:"required,gt=0"`
}

type RecurrenceRequest struct {
	DayOfWeek          *int   `json:"day_of_week" binding:"required,gte=0,lte=6" example:"1"`
	Time               string `json:"time" binding:"required,datetime=15:04" example:"07:00"`
	StartDate          string `json:"start_date" binding:"required,datetime=2006-01-02" example:"2026-01-05"`
	EndDate            string `json:"end_date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-30"`
	ClassID            int    `json:"class_id" binding:"required,gt=0"`
	CoachID            int    `json:"coach_id" binding:"required,gt=0"`
	LocationFacilityID int    `json:"location_facility_id" binding:"required,gt=0"`
}

type ListFilter struct {
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	LocationID  int    `form:"location_id" binding:"omitempty,gt=0"`
	ClassTypeID int    `form:"class_type_id" binding:"omitempty,gt=0"`
	CoachID     int    `form:"coach_id" binding:"omitempty,gt=0"`
}

// Range is a resolved [From, To) window in absolute time.
type Range struct {
	From time.Time
	To   time.Time
}

type GenerateRequest struct {
	Weeks int `form:"weeks" json:"weeks" binding:"omitempty,gt=0,lte=26"`
}

type GenerateResult struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Created int    `json:"created"`
}
