package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var jsonOutput bool
	var linger time.Duration

	cmd := &cobra.Command{
		Use:   "play <code> <username>",
		Short: "Join a room over a websocket and play",
		Long: `Join a room over the websocket gateway and play interactively.

Each input line is submitted as a guess, except for these commands:
  /start [word]  start the game, optionally with a custom solution
  /status        show the room status
  /lobby         return a finished room to the lobby
  /leave         leave the room and exit

Events from the room are printed as they arrive. Ending input or pressing
Ctrl+C disconnects, which also removes the player from the room.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := &playSession{
				code:       strings.ToUpper(args[0]),
				username:   args[1],
				jsonOutput: jsonOutput || cfg.Output == "json",
				linger:     linger,
				out:        &syncWriter{w: cmd.OutOrStdout()},
			}
			return session.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw event frames as JSON lines")
	cmd.Flags().DurationVar(&linger, "linger", time.Second, "How long to keep printing events after input ends")

	return cmd
}

// syncWriter serialises writes from the event reader and the input loop
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type playSession struct {
	code       string
	username   string
	jsonOutput bool
	linger     time.Duration
	out        io.Writer
	conn       *websocket.Conn
}

// frame is the envelope used in both directions
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (p *playSession) run(ctx context.Context, in io.Reader) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	p.conn = conn

	// Only the reader goroutine reads; only this goroutine writes
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.readEvents()
	}()

	if err := p.send("join", map[string]string{"roomCode": p.code, "username": p.username}); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-done:
			return nil
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			leave, err := p.handleLine(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if leave {
				break loop
			}
		}
	}

	// Give in-flight events a chance to arrive before hanging up
	select {
	case <-time.After(p.linger):
	case <-done:
	case <-ctx.Done():
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}

// handleLine turns one input line into an outbound event. Returns true when
// the session should end.
func (p *playSession) handleLine(line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, "/") {
		return false, p.send("submitGuess", map[string]any{
			"roomCode": p.code,
			"username": p.username,
			"guess":    line,
		})
	}

	command, arg, _ := strings.Cut(line, " ")
	switch command {
	case "/start":
		data := map[string]string{"roomCode": p.code}
		if word := strings.TrimSpace(arg); word != "" {
			data["customWord"] = word
		}
		return false, p.send("startGame", data)
	case "/status":
		return false, p.send("getRoomStatus", map[string]string{"roomCode": p.code})
	case "/lobby":
		return false, p.send("returnToLobby", map[string]string{"roomCode": p.code})
	case "/leave", "/quit":
		return true, p.send("leave", map[string]string{"roomCode": p.code, "username": p.username})
	default:
		_, _ = fmt.Fprintf(p.out, "Unknown command %s\n", command)
		return false, nil
	}
}

func (p *playSession) send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := p.conn.WriteJSON(frame{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func (p *playSession) readEvents() {
	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		if p.jsonOutput {
			_, _ = fmt.Fprintln(p.out, string(message))
			continue
		}

		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			continue
		}
		printEvent(p.out, f)
	}
}

type eventRoomUpdated struct {
	Room     Room   `json:"room"`
	Reason   string `json:"reason"`
	Username string `json:"username"`
}

type eventGameStarted struct {
	RoomCode    string `json:"roomCode"`
	Mode        string `json:"mode"`
	RoundNumber int    `json:"roundNumber"`
	Settings    struct {
		WordLength int `json:"wordLength"`
		MaxGuesses int `json:"maxGuesses"`
	} `json:"settings"`
}

type eventGuessSubmitted struct {
	Username      string `json:"username"`
	Guess         string `json:"guess"`
	AttemptNumber int    `json:"attemptNumber"`
	Won           bool   `json:"won"`
	Eliminated    bool   `json:"eliminated"`
}

type eventPlayerEliminated struct {
	EliminatedPlayer string   `json:"eliminatedPlayer"`
	Reason           string   `json:"reason"`
	RemainingPlayers []string `json:"remainingPlayers"`
}

type eventGameOver struct {
	Winner       *string `json:"winner"`
	Reason       string  `json:"reason"`
	SolutionWord string  `json:"solutionWord"`
}

type eventRoomStatus struct {
	Code    string `json:"roomCode"`
	Status  string `json:"status"`
	Players []struct {
		Username   string `json:"username"`
		Score      int    `json:"score"`
		Eliminated bool   `json:"eliminated"`
		Won        bool   `json:"won"`
	} `json:"players"`
}

type eventRoomClosed struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}

type eventError struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func printEvent(w io.Writer, f frame) {
	switch f.Event {
	case "connected":
		_, _ = fmt.Fprintln(w, "Connected")

	case "room-updated":
		var d eventRoomUpdated
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		who := ""
		if d.Username != "" {
			who = d.Username + " "
		}
		_, _ = fmt.Fprintf(w, "Room %s: %s%s (%d/%d players, %s, host %s)\n",
			d.Room.Code, who, strings.ReplaceAll(d.Reason, "_", " "),
			len(d.Room.Players), d.Room.MaxPlayers, d.Room.Status, d.Room.HostID)

	case "game-started":
		var d eventGameStarted
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "Game started in %s (%s, round %d): %d letters, %d guesses\n",
			d.RoomCode, d.Mode, d.RoundNumber, d.Settings.WordLength, d.Settings.MaxGuesses)

	case "guess-submitted":
		var d eventGuessSubmitted
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		result := ""
		switch {
		case d.Won:
			result = " and solved it"
		case d.Eliminated:
			result = " and is out of guesses"
		}
		_, _ = fmt.Fprintf(w, "%s guessed %s (attempt %d)%s\n", d.Username, d.Guess, d.AttemptNumber, result)

	case "player-eliminated":
		var d eventPlayerEliminated
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "%s is out (%s), remaining: %s\n",
			d.EliminatedPlayer, d.Reason, strings.Join(d.RemainingPlayers, ", "))

	case "game-over":
		var d eventGameOver
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		if d.Winner != nil {
			_, _ = fmt.Fprintf(w, "Game over: %s won (%s). The word was %s\n", *d.Winner, d.Reason, d.SolutionWord)
		} else {
			_, _ = fmt.Fprintf(w, "Game over: no winner (%s). The word was %s\n", d.Reason, d.SolutionWord)
		}

	case "room-status":
		var d eventRoomStatus
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "Room %s is %s\n", d.Code, d.Status)
		for _, pl := range d.Players {
			state := "active"
			switch {
			case pl.Won:
				state = fmt.Sprintf("won in %d", pl.Score)
			case pl.Eliminated:
				state = "out"
			}
			_, _ = fmt.Fprintf(w, "  - %s: %s\n", pl.Username, state)
		}

	case "room-closed":
		var d eventRoomClosed
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "Room %s closed (%s)\n", d.RoomCode, d.Reason)

	case "room-error", "game-error":
		var d eventError
		if json.Unmarshal(f.Data, &d) != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "Error: %s (%s)\n", d.Message, d.Code)

	default:
		_, _ = fmt.Fprintf(w, "%s: %s\n", f.Event, string(f.Data))
	}
}
