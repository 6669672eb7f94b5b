package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomCounts:
		o.printRoomCounts(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Guess response type (matches API)
type Guess struct {
	Word          string `json:"word"`
	AttemptNumber int    `json:"attemptNumber"`
}

// Player response type
type Player struct {
	Username   string  `json:"username"`
	Score      int     `json:"score"`
	Won        bool    `json:"won"`
	Eliminated bool    `json:"eliminated"`
	Outcome    string  `json:"outcome"`
	Guesses    []Guess `json:"guesses"`
}

// Room response type
type Room struct {
	Code         string   `json:"roomCode"`
	HostID       string   `json:"hostId"`
	Mode         string   `json:"mode"`
	MaxPlayers   int      `json:"maxPlayers"`
	Status       string   `json:"status"`
	Players      []Player `json:"players"`
	Winner       *string  `json:"winner"`
	SolutionWord string   `json:"solutionWord,omitempty"`
	RoundNumber  int      `json:"roundNumber"`
}

// RoomCounts response type
type RoomCounts struct {
	Total    int `json:"total"`
	Waiting  int `json:"waiting"`
	Playing  int `json:"playing"`
	Finished int `json:"finished"`
}

// HealthResult response type
type HealthResult struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionaryLoaded"`
	DictionaryWords  int    `json:"dictionaryWords"`
}

func (o *Output) printRoom(r Room) {
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	_, _ = fmt.Fprintf(o.w, "Mode: %s\n", r.Mode)
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	if r.SolutionWord != "" {
		_, _ = fmt.Fprintf(o.w, "Solution: %s\n", r.SolutionWord)
	}
	if r.Winner != nil {
		_, _ = fmt.Fprintf(o.w, "Winner: %s\n", *r.Winner)
	}
	_, _ = fmt.Fprintf(o.w, "Players (%d/%d):\n", len(r.Players), r.MaxPlayers)
	o.printPlayers(r.Players, r.HostID)
}

func (o *Output) printPlayers(players []Player, host string) {
	for _, p := range players {
		tags := []string{}
		if p.Username == host {
			tags = append(tags, "host")
		}
		if p.Outcome != "" && p.Outcome != "active" {
			tags = append(tags, p.Outcome)
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ", ") + "]"
		}

		words := make([]string, len(p.Guesses))
		for i, g := range p.Guesses {
			words[i] = g.Word
		}
		guesses := ""
		if len(words) > 0 {
			guesses = " " + strings.Join(words, " ")
		}
		_, _ = fmt.Fprintf(o.w, "  - %s%s%s\n", p.Username, suffix, guesses)
	}
}

func (o *Output) printRoomCounts(c RoomCounts) {
	_, _ = fmt.Fprintf(o.w, "Rooms: %d\n", c.Total)
	_, _ = fmt.Fprintf(o.w, "  waiting:  %d\n", c.Waiting)
	_, _ = fmt.Fprintf(o.w, "  playing:  %d\n", c.Playing)
	_, _ = fmt.Fprintf(o.w, "  finished: %d\n", c.Finished)
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Dictionary: %d words\n", h.DictionaryWords)
}
