package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for dates of birth.
const DateLayout = "2006-01-02"

// User is a record on the Users tab.
type User struct {
	ID          ID     `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Role        string `json:"role"`
}

// Genders offered by the user form. Other values are accepted from upstream.
var Genders = []string{"male", "female", "other"}

// FullName returns the first and last name joined by a space.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Birthday parses DateOfBirth. The second result is false for empty or
// unparseable dates.
func (u User) Birthday() (time.Time, bool) {
	t, err := time.Parse(DateLayout, u.DateOfBirth)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate checks the fields a user must carry before it is stored.
func (u User) Validate() error {
	var errs []error
	if strings.TrimSpace(u.FirstName) == "" {
		errs = append(errs, errors.New("firstName is required"))
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs = append(errs, errors.New("lastName is required"))
	}
	if u.Age <= 0 {
		errs = append(errs, errors.New("age must be a positive number"))
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			errs = append(errs, fmt.Errorf("email %q is not a valid address", u.Email))
		}
	}
	if u.DateOfBirth != "" {
		if _, ok := u.Birthday(); !ok {
			errs = append(errs, fmt.Errorf("dateOfBirth %q is not a YYYY-MM-DD date", u.DateOfBirth))
		}
	}
	if !ValidRole(u.Role) {
		errs = append(errs, fmt.Errorf("role %q is invalid", u.Role))
	}
	return errors.Join(errs...)
}
