// Package contracts defines the telemetry data types shipped by telship.
//
// A Telemetry value is anything that can serialize itself into a
// JSON-compatible map. Envelope is the concrete type produced by the
// agent; custom producers can implement Telemetry directly.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Telemetry is a single unit of telemetry data. Implementations produce
// a JSON-compatible representation of themselves for transmission.
type Telemetry interface {
	// Serialize returns the JSON-compatible form of the item.
	Serialize() map[string]interface{}
}

// Envelope wraps one telemetry record with its transport metadata.
type Envelope struct {
	// Ver is the envelope schema version.
	Ver int `json:"ver"`

	// Name identifies the telemetry type (e.g. "Event", "Trace").
	Name string `json:"name"`

	// Time is when the record was produced.
	Time time.Time `json:"time"`

	// IKey is the instrumentation key identifying the sending application.
	IKey string `json:"iKey,omitempty"`

	// SeqID is a unique id assigned when the envelope is created.
	SeqID string `json:"seq"`

	// Tags carries context properties (host, role, session, ...).
	Tags map[string]string `json:"tags,omitempty"`

	// Data is the type-specific payload.
	Data map[string]interface{} `json:"data,omitempty"`
}

// NewEnvelope creates an envelope for the given telemetry type with the
// current time and a fresh sequence id.
func NewEnvelope(name string) *Envelope {
	return &Envelope{
		Ver:   1,
		Name:  name,
		Time:  time.Now().UTC(),
		SeqID: uuid.NewString(),
	}
}

// Serialize returns the JSON-compatible form of the envelope.
func (e *Envelope) Serialize() map[string]interface{} {
	m := map[string]interface{}{
		"ver":  e.Ver,
		"name": e.Name,
		"time": e.Time.UTC().Format(time.RFC3339Nano),
		"seq":  e.SeqID,
	}
	if e.IKey != "" {
		m["iKey"] = e.IKey
	}
	if len(e.Tags) > 0 {
		tags := make(map[string]interface{}, len(e.Tags))
		for k, v := range e.Tags {
			tags[k] = v
		}
		m["tags"] = tags
	}
	if len(e.Data) > 0 {
		m["data"] = e.Data
	}
	return m
}
