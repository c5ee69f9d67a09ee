package live

import (
	"fmt"
	"strconv"
)

// Event is a client event delivered to a session handler.
type Event struct {
	Name string
	Data map[string]any
}

// String returns the payload value for key rendered as a string.
func (e Event) String(key string) string {
	if v, ok := e.Data[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// Int returns the payload value for key as an int. JSON numbers arrive as
// float64 and are truncated.
func (e Event) Int(key string) int {
	if v, ok := e.Data[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case float64:
			return int(val)
		case string:
			i, _ := strconv.Atoi(val)
			return i
		}
	}
	return 0
}

// Float returns the payload value for key as a float64.
func (e Event) Float(key string) float64 {
	if v, ok := e.Data[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case int:
			return float64(val)
		case string:
			f, _ := strconv.ParseFloat(val, 64)
			return f
		}
	}
	return 0.0
}

// Bool returns the payload value for key as a bool.
func (e Event) Bool(key string) bool {
	if v, ok := e.Data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
		b, _ := strconv.ParseBool(fmt.Sprintf("%v", v))
		return b
	}
	return false
}

// Raw returns the untyped payload value for key.
func (e Event) Raw(key string) any {
	return e.Data[key]
}

// eventFrame is the inbound wire format.
type eventFrame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// htmlFrame is the outbound wire format.
type htmlFrame struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}
