package domain

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve in minimal containers
)

// ExportFilename is the attachment name of exported passwords.
const ExportFilename = "password.txt"

const localTimeLayout = "Monday, 02 January 2006 15:04:05 MST"

// ExportPlain returns the bare password as the file body.
func ExportPlain(e HistoryEntry) string {
	return e.Text
}

// ExportDetailed returns a text block with generation metadata.
// Legacy entries without a timestamp only carry the source and password.
func ExportDetailed(e HistoryEntry, site string) string {
	var b strings.Builder
	if site != "" {
		fmt.Fprintf(&b, "Password generated by %s\n", site)
	} else {
		b.WriteString("Generated password\n")
	}

	if !e.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Generated at: %s\n", e.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "Local time:   %s\n", e.CreatedAt.In(loadLocation(e.Timezone)).Format(localTimeLayout))
	}
	if e.Timezone != "" {
		fmt.Fprintf(&b, "Timezone:     %s\n", e.Timezone)
	}
	if site != "" {
		fmt.Fprintf(&b, "Source:       %s\n", site)
	}
	fmt.Fprintf(&b, "\nPassword: %s\n", e.Text)
	return b.String()
}

// loadLocation resolves an IANA zone name, falling back to UTC.
func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
