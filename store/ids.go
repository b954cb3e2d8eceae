package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ClinicDesk/models"
)

// NextID is one more than the largest id in items, 1 for none.
func NextID[T models.Entity](items []T) models.ID {
	var highest models.ID
	for _, item := range items {
		if id := item.GetID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// NextCode returns PREFIX-YEAR-NNNN where NNNN follows the highest sequence
// already used with that prefix and year. Codes that do not parse are
// ignored, so deleting a record never makes a code come back.
func NextCode(prefix string, year int, codes []string) string {
	head := fmt.Sprintf("%s-%d-", prefix, year)
	highest := 0
	for _, code := range codes {
		rest, ok := strings.CutPrefix(code, head)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%04d", head, highest+1)
}

// AssignCode sets the next code on item from the codes found in items.
func AssignCode[T models.Entity](item models.Coded, items []T, now time.Time) {
	codes := make([]string, 0, len(items))
	for _, existing := range items {
		if c, ok := any(existing).(models.Coded); ok {
			codes = append(codes, c.GetCode())
		}
	}
	item.SetCode(NextCode(item.CodePrefix(), now.Year(), codes))
}
