package capture

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spge/groundcheck/internal/groundcheck"
)

var ErrLastSlot = errors.New("at least one TPH slot is required")

// Slots is the ordered list of TPH attachments being captured for a draft.
type Slots struct {
	items []groundcheck.Attachment
}

// NewSlots starts with a single empty slot numbered 1.
func NewSlots() *Slots {
	return &Slots{items: []groundcheck.Attachment{newSlot(1)}}
}

func newSlot(n int) groundcheck.Attachment {
	return groundcheck.Attachment{ID: uuid.NewString(), TPHNumber: n}
}

// Add appends a slot numbered one past the highest existing number.
func (s *Slots) Add() groundcheck.Attachment {
	highest := 0
	for _, a := range s.items {
		if a.TPHNumber > highest {
			highest = a.TPHNumber
		}
	}
	slot := newSlot(highest + 1)
	s.items = append(s.items, slot)
	return slot
}

// Remove drops the slot at index i unless it is the last one.
func (s *Slots) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	if len(s.items) == 1 {
		return ErrLastSlot
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// SetPhoto stores a photo data URL in slot i.
func (s *Slots) SetPhoto(i int, photo string) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i].PhotoData = photo
	return nil
}

func (s *Slots) Len() int { return len(s.items) }

// Attachments returns a copy in insertion order.
func (s *Slots) Attachments() []groundcheck.Attachment {
	return append([]groundcheck.Attachment(nil), s.items...)
}

func (s *Slots) check(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("slot %d out of range", i)
	}
	return nil
}
