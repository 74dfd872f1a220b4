package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// NoData is how an undefined Measure is displayed.
const NoData = "no data"

// Measure is a statistic that may be undefined, for example the mean of an empty
// group. Undefined measures marshal to JSON null.
type Measure struct {
	Value float64
	Valid bool
}

// Defined returns a valid measure, or an undefined one for NaN and infinities.
func Defined(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{Value: v, Valid: true}
}

// Format renders the value with the given precision, or NoData.
func (m Measure) Format(precision int) string {
	if !m.Valid {
		return NoData
	}
	return strconv.FormatFloat(m.Value, 'f', precision, 64)
}

// String implements fmt.Stringer.
func (m Measure) String() string {
	return m.Format(3)
}

// MarshalJSON implements json.Marshaler.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Measure{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}
