package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when an upstream payload does not have the
// expected shape. It aborts the load of that one collection.
var ErrMalformedResponse = errors.New("malformed response")

// DecodeCollection returns the raw elements of the array stored under key in
// a JSON object.
func DecodeCollection(body []byte, key string) ([]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: %q is not an array", ErrMalformedResponse, key)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return items, nil
}

// rawUser lists every field name seen from user sources.
type rawUser struct {
	ID          ID      `json:"id"`
	MongoID     ID      `json:"_id"`
	FirstName   *string `json:"firstName"`
	FirstName2  *string `json:"first_name"`
	LastName    *string `json:"lastName"`
	LastName2   *string `json:"last_name"`
	Age         flexInt `json:"age"`
	Gender      string  `json:"gender"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	BirthDate   *string `json:"birthDate"`
	Role        string  `json:"role"`
}

// NormalizeUser decodes a user record from any known source shape into the
// canonical User. Missing free-text fields become empty strings and a missing
// role becomes RoleUser. Normalizing an already normalized record returns it
// unchanged.
func NormalizeUser(data []byte) (User, error) {
	var r rawUser
	if err := json.Unmarshal(data, &r); err != nil {
		return User{}, fmt.Errorf("decoding user: %w", err)
	}

	id := r.ID
	if id == "" {
		id = r.MongoID
	}

	u := User{
		ID:          id,
		FirstName:   first(r.FirstName, r.FirstName2),
		LastName:    first(r.LastName, r.LastName2),
		Age:         int(r.Age),
		Gender:      strings.TrimSpace(r.Gender),
		Email:       strings.TrimSpace(r.Email),
		Phone:       strings.TrimSpace(r.Phone),
		DateOfBirth: normalizeDate(first(r.DateOfBirth, r.BirthDate)),
		Role:        strings.ToLower(strings.TrimSpace(r.Role)),
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return u, nil
}

// NormalizeProduct decodes a catalog record and fills derived fields.
func NormalizeProduct(data []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, fmt.Errorf("decoding product: %w", err)
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.TrimSpace(p.Category)
	switch p.AvailabilityStatus {
	case AvailabilityInStock, AvailabilityLowStock, AvailabilityOutOfStock:
	default:
		p.AvailabilityStatus = AvailabilityFor(p.Stock)
	}
	return p, nil
}

func first(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// normalizeDate reduces timestamps such as "1996-5-30" or
// "1990-01-02T00:00:00Z" to YYYY-MM-DD when possible.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	for i := 1; i < 3; i++ {
		if len(parts[i]) == 1 {
			parts[i] = "0" + parts[i]
		}
	}
	return strings.Join(parts, "-")
}
