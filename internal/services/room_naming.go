package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	scheduledRoomTTL = 3 * time.Hour
	adHocRoomTTL     = 2 * time.Hour
	minLeadTime      = 2 * time.Hour
)

var roomNameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func newRoomSuffix() string { return uuid.NewString()[:6] }

// buildRoomName renders "<callType>-<firstName>-<YYYYMMDD>-<suffix>" using
// only characters the video provider accepts.
func buildRoomName(callType, firstName string, at time.Time, suffix string) string {
	parts := []string{slug(callType, "call"), slug(firstName, "guest"), at.UTC().Format("20060102"), suffix}
	return strings.Join(parts, "-")
}

func slug(s, fallback string) string {
	out := strings.Trim(roomNameUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return fallback
	}
	if len(out) > 40 {
		out = strings.TrimRight(out[:40], "-")
	}
	return out
}
