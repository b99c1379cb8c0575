package scheduling

import (
	"strings"
	"time"

	"maintenance-service/internal/models"
)

// Canonical maintenance intervals in days per equipment type. Matched
// case-insensitively on the exact type name.
var maintenanceIntervals = map[string]int{
	// Classroom equipment
	"projector":         90,
	"computer":          180,
	"laptop":            120,
	"interactive board": 120,
	"audio system":      90,
	"air conditioner":   90,
	"printer":           60,
	"scanner":           90,

	// Lab equipment
	"microscope":            180,
	"laboratory equipment":  120,
	"scientific instrument": 90,

	// Network equipment
	"router":       365,
	"switch":       365,
	"access point": 180,

	// Furniture and fixtures
	"desk":       730,
	"chair":      365,
	"whiteboard": 365,
}

const defaultInterval = 180

// Interval returns the recommended days between maintenance for the
// equipment. Older equipment and equipment with recent incidents get
// shorter intervals; the result never drops below 30 days.
func Interval(typeName string, eq models.Equipment, recentLogCount int, now time.Time) int {
	interval := defaultInterval
	if days, ok := maintenanceIntervals[strings.ToLower(strings.TrimSpace(typeName))]; ok {
		interval = days
	}

	// Age adjustment, largest bracket first.
	ageDays := eq.AgeDays(now)
	if ageDays > 365*3 {
		interval = int(float64(interval) * 0.75)
	} else if ageDays > 365*2 {
		interval = int(float64(interval) * 0.85)
	}

	// Equipment with recent issues needs more frequent attention.
	if recentLogCount > 2 {
		interval = int(float64(interval) * 0.7)
	}

	if interval < 30 {
		return 30
	}
	return interval
}
