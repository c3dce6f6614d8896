package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names the service reads or writes on event documents.
const (
	EventFieldID        = "_id"
	EventFieldEmail     = "email"
	EventFieldStartDate = "start_date"
	EventFieldCreatedAt = "createdAt"
)

// Event is a document in the events collection. Apart from the
// store-assigned ID its shape is whatever the caller posted; Fields holds
// those values inline so they round-trip through BSON unchanged.
type Event struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Fields bson.M             `bson:",inline"`
}

var errEventNotObject = errors.New("event body must be a JSON object")

// ParseEvent decodes a request body into an Event. The body must be a JSON
// object, may not carry its own _id, and when it has an email that email
// must be a string.
func ParseEvent(body []byte) (Event, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return Event{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if fields == nil {
		return Event{}, errEventNotObject
	}
	if _, ok := fields[EventFieldID]; ok {
		return Event{}, errors.New("_id is assigned by the server and cannot be supplied")
	}
	if v, ok := fields[EventFieldEmail]; ok {
		if _, isString := v.(string); !isString {
			return Event{}, errors.New("email must be a string")
		}
	}
	return Event{Fields: bson.M(fields)}, nil
}

// StampCreated sets createdAt to now unless the caller already supplied one.
func (e *Event) StampCreated(now time.Time) {
	if e.Fields == nil {
		e.Fields = bson.M{}
	}
	if _, ok := e.Fields[EventFieldCreatedAt]; !ok {
		e.Fields[EventFieldCreatedAt] = now.UTC()
	}
}

// Email returns the event's email filter key, or "" when absent.
func (e Event) Email() string {
	s, _ := e.Fields[EventFieldEmail].(string)
	return s
}

// MarshalJSON flattens Fields next to the hex _id.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	if !e.ID.IsZero() {
		out[EventFieldID] = e.ID.Hex()
	}
	return json.Marshal(out)
}

// InsertAck acknowledges a successful insert.
type InsertAck struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// DeleteAck acknowledges a delete. DeletedCount is 0 when nothing matched.
type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
