package SlackAdapter

import (
	"fmt"
	"time"
)

// LocalMidnight returns the UTC instant of the most recent local
// midnight for a clock running offsetSeconds ahead of UTC. The shift /
// truncate / unshift sequence works for negative and fractional-hour
// offsets alike.
func LocalMidnight(now time.Time, offsetSeconds int) time.Time {
	offset := time.Duration(offsetSeconds) * time.Second
	shifted := now.UTC().Add(offset)
	localDayStart := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
	return localDayStart.Add(-offset)
}

// TodayWindow is the window every slash-command summary covers: from
// the requester's local midnight up to now.
func TodayWindow(now time.Time, offsetSeconds int) (time.Time, time.Time) {
	return LocalMidnight(now, offsetSeconds), now
}

// slackTimestamp renders a time as the seconds.microseconds string the
// Slack history API expects.
func slackTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
