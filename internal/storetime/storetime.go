// Package storetime converts timestamps to and from the string form persisted in
// the table store. Strings in this layout sort in chronological order.
package storetime

import "time"

const Layout = "2006-01-02T15:04:05.000Z"

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func Parse(value string) (time.Time, error) {
	return time.ParseInLocation(Layout, value, time.UTC)
}
