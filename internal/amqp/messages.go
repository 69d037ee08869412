package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerEvent announces a committed change to the ledger document. It carries
// no document data; consumers reload the document from the store.
type LedgerEvent struct {
	Operation string `json:"operation"`
	Entity    string `json:"entity"`
	Key       string `json:"key,omitempty"`
	// Year and Month name the month whose report the change affects; zero
	// when the change is not tied to a month.
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(operation, entity, key string, version int64) *LedgerEvent {
	return &LedgerEvent{
		Operation: operation,
		Entity:    entity,
		Key:       key,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

// ForMonth sets the affected month and returns the event.
func (e *LedgerEvent) ForMonth(year, month int) *LedgerEvent {
	e.Year, e.Month = year, month
	return e
}

// HasMonth reports whether the event names an affected month.
func (e *LedgerEvent) HasMonth() bool {
	return e.Year > 0 && e.Month >= 1 && e.Month <= 12
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event, rejecting ones without an entity.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Entity == "" || ev.Operation == "" {
		return nil, errors.New("ledger event without operation or entity")
	}
	return &ev, nil
}
