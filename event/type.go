package event

import (
	"encoding/json"
	"fmt"
)

type EventType uint8

const (
	// BribeTaken is sent when a vote settles the bribe recorded for the voter
	BribeTaken EventType = iota
	// WithdrawalAvailable is sent right after BribeTaken, once the bribe value
	// has been credited to the voter's pending withdrawal
	WithdrawalAvailable
	// OperationApplied is sent for every committed operation with its receipt
	OperationApplied
)

var eventTypeNames = map[EventType]string{
	BribeTaken:          "BribeTaken",
	WithdrawalAvailable: "WithdrawalAvailable",
	OperationApplied:    "OperationApplied",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *EventType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range eventTypeNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", name)
}
