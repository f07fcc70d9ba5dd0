package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReference returns a short human-friendly reference such as
// "BILL-1A2B3C4D" for printing on receipts and reading out at the till.
func GenerateReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
