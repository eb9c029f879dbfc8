package model

import "time"

// Contact represents a single entry in a user's address book.
// Every contact belongs to exactly one user; repository and service
// methods always scope access by UserID.
type Contact struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	DateOfBirth time.Time `json:"date_of_birth"`
	UserID      int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// BirthdayInWindow reports whether the contact's birthday, re-anchored to
// the calendar year of either end of [from, to], falls inside the window
// (inclusive). Anchoring to both years is what makes windows that span a
// year boundary work: a Dec 30 birthday must match a Dec 28 + 7 day query
// whose end lands in January.
//
// A Feb 29 birth date re-anchored to a non-leap year clamps to Feb 28.
func (c *Contact) BirthdayInWindow(from, to time.Time) bool {
	from = truncateToDate(from)
	to = truncateToDate(to)

	for _, year := range []int{from.Year(), to.Year()} {
		candidate := anchorBirthday(c.DateOfBirth, year)
		if !candidate.Before(from) && !candidate.After(to) {
			return true
		}
	}
	return false
}

// anchorBirthday moves a birth date into the given calendar year,
// clamping Feb 29 to Feb 28 when the year is not a leap year.
func anchorBirthday(birth time.Time, year int) time.Time {
	month, day := birth.Month(), birth.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
