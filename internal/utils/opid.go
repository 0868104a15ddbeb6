package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewOperationID generates a unique ID correlating the log lines produced
// by a single store operation
func NewOperationID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// Fallback to timestamp if the random source fails
		return fmt.Sprintf("op-%d", time.Now().UnixNano())
	}
	return id.String()
}
