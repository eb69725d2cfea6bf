package domain

import (
	"fmt"
	"time"
)

// Service represents a bookable salon service
type Service struct {
	ID                  int64
	Name                string
	Category            string
	DurationMinutes     int
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	RoomID              *int64 // Required room, if the service needs one
	Active              bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the service definition. A non-positive duration is a
// configuration error and is rejected here, before the service can ever
// reach the slot resolver.
func (s *Service) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidServiceDefinition)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidServiceDefinition, s.DurationMinutes)
	}
	if s.BufferBeforeMinutes < 0 || s.BufferAfterMinutes < 0 {
		return fmt.Errorf("%w: buffers must be non-negative", ErrInvalidServiceDefinition)
	}
	if s.DurationMinutes > MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration exceeds %d minutes", ErrInvalidServiceDefinition, MaxServiceDurationMinutes)
	}
	return nil
}

// RequiredMinutes returns the full staff-side footprint of the service:
// buffer before + duration + buffer after.
func (s *Service) RequiredMinutes() int {
	return s.BufferBeforeMinutes + s.DurationMinutes + s.BufferAfterMinutes
}

// StaffMember represents a salon employee who performs services
type StaffMember struct {
	ID     int64
	Name   string
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room is a physical resource with capacity 1 (cannot host two
// appointments at once)
type Room struct {
	ID         int64
	LocationID int64
	Name       string
}

// Location is a salon branch. Timezone is stored as an IANA name and
// passed through to schedule math without any conversion logic.
type Location struct {
	ID       int64
	Name     string
	Timezone string
}
