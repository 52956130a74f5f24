package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString decodes identifiers that upstream services send either as a
// JSON string or as a number (order numbers, legacy numeric ids).
type FlexibleString string

func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*s = FlexibleString(value)
		return nil
	default:
		var number json.Number
		if err := json.Unmarshal(trimmed, &number); err != nil {
			return fmt.Errorf("cannot decode %s into FlexibleString", trimmed)
		}
		if i, err := number.Int64(); err == nil {
			*s = FlexibleString(strconv.FormatInt(i, 10))
			return nil
		}
		*s = FlexibleString(number.String())
		return nil
	}
}

func (s FlexibleString) String() string {
	return string(s)
}
