package booking

import "time"

const (
	StatusBooked    = "booked"
	StatusCheckedIn = "checked_in"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID        int       `db:"id" json:"id"`
	AgendaID  int       `db:"agenda_id" json:"agenda_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Status    string    `db:"status" json:"status" example:"booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Detail is a booking joined with its session and member.
type Detail struct {
	Booking
	AgendaTime   time.Time `db:"agenda_time" json:"agenda_time"`
	ClassName    string    `db:"class_name" json:"class_name"`
	ClassTypeID  int       `db:"class_type_id" json:"class_type_id"`
	LocationName string    `db:"location_name" json:"location_name"`
	UserName     string    `db:"user_name" json:"user_name"`
	UserEmail    string    `db:"user_email" json:"user_email"`
}

// Seat is the locked agenda row a booking is taken against.
type Seat struct {
	AgendaID    int        `db:"agenda_id"`
	Time        time.Time  `db:"time"`
	Slot        int        `db:"slot"`
	ClassTypeID int        `db:"class_type_id"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type CancelRequest struct {
	Refund bool `json:"refund" example:"true"`
}

// Event is the payload published on booking.created and booking.cancelled.
type Event struct {
	BookingID int       `json:"booking_id"`
	AgendaID  int       `json:"agenda_id"`
	UserID    int       `json:"user_id"`
	Time      time.Time `json:"time"`
	Refunded  bool      `json:"refunded,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}
