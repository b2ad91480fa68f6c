package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeClosed   EventType = "closed"
	EventTypeRestored EventType = "restored"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLoan            EntityType = "loan"
	EntityTypeLoanTransaction EntityType = "loan_transaction"
	EntityTypeInvestor        EntityType = "investor"
	EntityTypeInvestorPayment EntityType = "investor_payment"
	EntityTypeBackup          EntityType = "backup"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "loan.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "loan"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoanCreated creates a loan.created event
func LoanCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanUpdated creates a loan.updated event
func LoanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLoan, payload)
}

// LoanDeleted creates a loan.deleted event
func LoanDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeLoan, payload)
}

// TransactionAdded creates a loan_transaction.created event
func TransactionAdded(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoanTransaction, payload)
}

// InvestorCreated creates an investor.created event
func InvestorCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInvestor, payload)
}

// InvestorUpdated creates an investor.updated event
func InvestorUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeInvestor, payload)
}

// InvestorDeleted creates an investor.deleted event
func InvestorDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeInvestor, payload)
}

// InvestorClosed creates an investor.closed event
func InvestorClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypeInvestor, payload)
}

// PaymentAdded creates an investor_payment.created event
func PaymentAdded(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInvestorPayment, payload)
}

// BackupCreated creates a backup.created event
func BackupCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBackup, payload)
}

// BackupRestored creates a backup.restored event
func BackupRestored(payload interface{}) Event {
	return NewEvent(EventTypeRestored, EntityTypeBackup, payload)
}
