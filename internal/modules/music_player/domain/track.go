package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrackMetadata describes a resolved track. It is immutable once resolved.
type TrackMetadata struct {
	Title        string
	Artist       string
	Duration     time.Duration
	SourceURL    string // page URL handed to the voice engine
	ThumbnailURL string
}

// FormattedDuration returns the duration as a human-readable string.
// Leading zero units are omitted, e.g. "42", "03:07", "01:00:03".
func (t TrackMetadata) FormattedDuration() string {
	return FormatDuration(t.Duration)
}

// Label returns the one-line form used in the status list: "Title (mm:ss) - Artist".
func (t TrackMetadata) Label() string {
	return fmt.Sprintf("%s (%s) - %s", t.Title, t.FormattedDuration(), t.Artist)
}

// FormatDuration renders d as colon-separated two-digit units, dropping
// hours and minutes when they are zero.
func FormatDuration(d time.Duration) string {
	hours, minutes, seconds := splitDuration(d)

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, pad(hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, pad(minutes))
	}
	parts = append(parts, pad(seconds))

	return strings.Join(parts, ":")
}

// FormatElapsed renders "elapsed/total" with both sides using the units of total,
// so the two halves always line up.
func FormatElapsed(elapsed, total time.Duration) string {
	eh, em, es := splitDuration(elapsed)
	th, tm, ts := splitDuration(total)

	var e, t []string
	if th > 0 {
		e = append(e, pad(eh))
		t = append(t, pad(th))
	}
	if tm > 0 || th > 0 {
		e = append(e, pad(em))
		t = append(t, pad(tm))
	}
	e = append(e, pad(es))
	t = append(t, pad(ts))

	return strings.Join(e, ":") + "/" + strings.Join(t, ":")
}

func splitDuration(d time.Duration) (hours, minutes, seconds int) {
	total := int(d / time.Second)
	return total / 3600, (total / 60) % 60, total % 60
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
