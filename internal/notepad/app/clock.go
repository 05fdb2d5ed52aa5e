package app

import "time"

// isoMillis - формат времени с миллисекундами, как у Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
