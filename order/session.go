// Package order tracks who an order is for and which order of the day it is.
package order

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"orderdesk/models"
)

// Clock returns the current time. Order ids use its calendar day.
type Clock func() time.Time

// ClockIn returns a Clock reporting wall time in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		return time.Now
	}
	return func() time.Time { return time.Now().In(loc) }
}

// Session is the per-browser-session order identity.
type Session struct {
	CustomerName string
	Sequence     int

	now Clock
}

// NewSession starts at sequence 1 with no customer name.
func NewSession() *Session {
	return &Session{Sequence: 1}
}

// WithClock sets the clock used for order ids and change timestamps.
func (s *Session) WithClock(c Clock) *Session {
	s.now = c
	return s
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Advance moves to the next order number. It never wraps or resets.
func (s *Session) Advance() models.Change {
	if s.Sequence < 1 {
		s.Sequence = 1
	}
	s.Sequence++
	return models.Change{Kind: models.OrderAdvanced, Sequence: s.Sequence, At: s.clock()}
}

func (s *Session) SetCustomerName(name string) models.Change {
	s.CustomerName = strings.TrimSpace(name)
	return models.Change{Kind: models.CustomerRenamed, Customer: s.CustomerName, At: s.clock()}
}

// CurrentOrderID formats today's date and the sequence as YYYYMMDD-NNN.
// It is derived on every call; do not keep it across Advance or midnight.
func (s *Session) CurrentOrderID() string {
	return FormatOrderID(s.clock(), s.Sequence)
}

// FormatOrderID renders the order id for day t and sequence seq.
func FormatOrderID(t time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", t.Format("20060102"), seq)
}

// Now exposes the session clock to formatters that stamp receipts.
func (s *Session) Now() time.Time {
	return s.clock()
}

func (s *Session) Clone() *Session {
	cp := *s
	return &cp
}

type sessionJSON struct {
	CustomerName string `json:"customerName"`
	Sequence     int    `json:"sequence"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{CustomerName: s.CustomerName, Sequence: s.Sequence})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var v sessionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Sequence < 1 {
		return fmt.Errorf("order sequence must be at least 1, got %d", v.Sequence)
	}
	s.CustomerName = v.CustomerName
	s.Sequence = v.Sequence
	return nil
}
