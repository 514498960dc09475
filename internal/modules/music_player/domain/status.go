package domain

import (
	"fmt"
	"strconv"
)

// StatusWindowSize is the number of rows shown on each side of the active track.
const StatusWindowSize = 2

// Control identifies a button of the status message.
type Control string

const (
	ControlPrevious Control = "prev"
	ControlStop     Control = "stop"
	ControlPause    Control = "pause"
	ControlNext     Control = "next"
	ControlLoop     Control = "loop"
)

// ControlStyle is the visual weight of a control button.
type ControlStyle int

const (
	ControlStylePrimary ControlStyle = iota + 1
	ControlStyleSecondary
	ControlStyleSuccess
	ControlStyleDanger
)

// ControlButton is one button of the control row.
type ControlButton struct {
	Control Control
	Emoji   string
	Style   ControlStyle
}

// StatusView is the rendered status message of a room.
type StatusView struct {
	Header       string
	Title        string
	URL          string
	ThumbnailURL string
	Body         []string
	Footer       string
	Controls     []ControlButton
}

// RenderStatus renders the state into a status view.
// Returns false when there is no current track to show.
func RenderStatus(s *QueueState) (StatusView, bool) {
	current := s.Queue.Current()
	if current == nil {
		return StatusView{}, false
	}

	tracks := s.Queue.List()
	index := s.Queue.CurrentIndex()

	body := make([]string, 0, 2*StatusWindowSize+3)
	for _, i := range Window(index, len(tracks), StatusWindowSize) {
		marker := "-"
		if i == index {
			marker = "▶️"
		}
		body = append(body, marker+" "+strconv.Itoa(i+1)+". "+tracks[i].Label())
	}

	elapsed := s.Queue.Elapsed()
	total := s.Queue.Total()

	return StatusView{
		Header:       "🔊 Now playing",
		Title:        "**" + current.Label() + "**",
		URL:          current.SourceURL,
		ThumbnailURL: current.ThumbnailURL,
		Body:         body,
		Footer: fmt.Sprintf("%d of %d tracks - %s (%s left)",
			index+1, len(tracks), FormatElapsed(elapsed, total), FormatDuration(total-elapsed)),
		Controls: controls(s.paused, s.repeat),
	}, true
}

func controls(paused, repeat bool) []ControlButton {
	pause := ControlButton{Control: ControlPause, Emoji: "⏸️", Style: ControlStylePrimary}
	if paused {
		pause = ControlButton{Control: ControlPause, Emoji: "▶️", Style: ControlStyleSuccess}
	}
	loop := ControlButton{Control: ControlLoop, Emoji: "🔁", Style: ControlStyleSecondary}
	if repeat {
		loop.Style = ControlStyleSuccess
	}

	return []ControlButton{
		{Control: ControlPrevious, Emoji: "⏮", Style: ControlStyleSecondary},
		{Control: ControlStop, Emoji: "⏹", Style: ControlStyleDanger},
		pause,
		{Control: ControlNext, Emoji: "⏭", Style: ControlStyleSecondary},
		loop,
	}
}

// Window returns the indices of the rows to show for a list of n tracks with the
// active track at index. Short lists are shown whole. Longer ones show k rows on
// each side of the active one (shifted when it is near either end) plus the first
// and last rows as anchors, so at most 2k+3 rows are returned.
func Window(index, n, k int) []int {
	if n == 0 {
		return nil
	}
	if n <= 2*k+1 {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}

	last := n - 1
	before, after := k, k
	if index < before {
		after = before - index + after
		before = index
	}
	if index+after >= last {
		before = after - (last - index) + before
		after = last - index
	}

	rows := make([]int, 0, 2*k+3)
	if index > 0 && before > 0 {
		rows = append(rows, 0)
		for i := max(index-before, 1); i < index; i++ {
			rows = append(rows, i)
		}
	}
	rows = append(rows, index)
	if index < last && after < last {
		for i := index + 1; i < min(index+after+1, last); i++ {
			rows = append(rows, i)
		}
		rows = append(rows, last)
	}
	return rows
}
