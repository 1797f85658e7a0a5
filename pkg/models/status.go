package models

import (
	"fmt"

	"github.com/Gobusters/ectolinq"
)

// ToolStatus is the lifecycle status of a tool. The store holds it as tool_status_type.
type ToolStatus string

const (
	ToolStatusActive     ToolStatus = "active"
	ToolStatusDeprecated ToolStatus = "deprecated"
	ToolStatusTrial      ToolStatus = "trial"
)

var ToolStatuses = []ToolStatus{ToolStatusActive, ToolStatusDeprecated, ToolStatusTrial}

func (s ToolStatus) Valid() bool {
	return ectolinq.Contains(ToolStatuses, s)
}

func ParseToolStatus(value string) (ToolStatus, error) {
	s := ToolStatus(value)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q", value)
	}
	return s, nil
}
