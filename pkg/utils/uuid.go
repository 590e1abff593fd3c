package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateBillNo generates a bill number such as "BILL-20240501-1A2B3C4D"
func GenerateBillNo(prefix string, day time.Time) string {
	return prefix + "-" + day.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateRequestID generates an id for request correlation
func GenerateRequestID() string {
	return uuid.New().String()
}
