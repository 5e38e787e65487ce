package configurable

import (
	"time"

	"github.com/google/uuid"
)

// Fields maps field names to raw operator-supplied values.
type Fields map[string]string

// Clone returns an independent copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Instance is one configured occurrence of a device class.
type Instance struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Fields    Fields    `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInstanceID returns a fresh instance identifier.
func NewInstanceID() string {
	return uuid.NewString()
}

// DeepCopy returns an independent copy of the instance.
func (i *Instance) DeepCopy() *Instance {
	if i == nil {
		return nil
	}
	cp := *i
	cp.Fields = i.Fields.Clone()
	return &cp
}
