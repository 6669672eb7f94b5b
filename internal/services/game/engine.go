package game

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/wordbattle/internal/dependencies/clock"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/dictionary"
)

// WordSource supplies solution words and validates custom words
type WordSource interface {
	IsValid(word string, length int) bool
	RandomWord(length int) (string, error)
}

// GuessOutcome is what a single guess did to the guessing player
type GuessOutcome string

const (
	GuessWon        GuessOutcome = "won"
	GuessEliminated GuessOutcome = "eliminated"
	GuessContinue   GuessOutcome = "continue"
)

// GuessResult is the result of a submitted guess
type GuessResult struct {
	Outcome GuessOutcome
	Guess   model.Guess

	// Player is a copy of the guessing player after the guess was applied
	Player model.Player

	// GameOver is set when the guess ended the game
	GameOver *model.GameOver
}

// Engine applies game rules to a room. It never stores rooms itself; the
// caller is responsible for holding the room exclusively and committing it.
type Engine struct {
	words  WordSource
	clock  clock.Clock
	logger *slog.Logger
}

// NewEngine creates a new game Engine
func NewEngine(words WordSource, clock clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		words:  words,
		clock:  clock,
		logger: logger.With(slog.String("component", "game-engine")),
	}
}

// StartGame moves a waiting room into play with either the given custom
// word or a random one
func (e *Engine) StartGame(room *model.Room, customWord string) error {
	if room.Status != model.RoomStatusWaiting {
		return model.ErrGameInProgress
	}
	if len(room.Players) < model.MinPlayersToStart {
		return model.ErrInsufficientPlayers
	}

	solution, err := e.pickSolution(customWord)
	if err != nil {
		return err
	}

	for i := range room.Players {
		room.Players[i].Reset()
	}
	room.SolutionWord = solution
	room.Status = model.RoomStatusPlaying
	room.GameStartTime = e.clock.Now()
	room.RoundNumber = 1
	room.Winner = ""

	e.logger.Info("game started",
		slog.String("room_code", string(room.Code)),
		slog.String("mode", string(room.Mode)),
		slog.Int("player_count", len(room.Players)),
		slog.Bool("custom_word", customWord != ""))

	return nil
}

func (e *Engine) pickSolution(customWord string) (string, error) {
	word := strings.ToUpper(strings.TrimSpace(customWord))
	if word == "" {
		random, err := e.words.RandomWord(model.WordLength)
		if err != nil {
			return "", fmt.Errorf("pick solution: %w", err)
		}
		return strings.ToUpper(random), nil
	}
	if !e.words.IsValid(word, model.WordLength) {
		return "", model.ErrInvalidCustomWord
	}
	return word, nil
}

// SubmitGuess records a guess for the player and applies the mode's end
// of game policy. Nothing is mutated when an error is returned.
func (e *Engine) SubmitGuess(room *model.Room, username, guess string, attemptNumber int) (*GuessResult, error) {
	if room.Status != model.RoomStatusPlaying {
		return nil, model.ErrGameNotInProgress
	}

	player := room.GetPlayer(username)
	if player == nil || !player.CanGuess() {
		return nil, model.ErrPlayerNotFoundOrEliminated
	}

	word := NormalizeGuess(guess)
	if !ValidGuessFormat(word) {
		return nil, model.ErrInvalidGuessFormat
	}

	// Clients normally number their own attempts; fill it in when they don't
	if attemptNumber <= 0 {
		attemptNumber = len(player.Guesses) + 1
	}

	recorded := model.Guess{
		Word:          word,
		AttemptNumber: attemptNumber,
		Timestamp:     e.clock.Now(),
	}
	player.Guesses = append(player.Guesses, recorded)

	result := &GuessResult{Outcome: GuessContinue, Guess: recorded}

	switch {
	case word == room.SolutionWord:
		player.Outcome = model.OutcomeWon
		player.Score = attemptNumber
		result.Outcome = GuessWon
		if room.Mode == model.ModeDuel {
			result.GameOver = &model.GameOver{Winner: username, Reason: model.GameOverSolved}
		} else {
			result.GameOver = resolveBattleRoyale(room)
		}

	case player.GuessesExhausted():
		player.Outcome = model.OutcomeEliminated
		result.Outcome = GuessEliminated
		result.GameOver = resolve(room)
	}

	result.Player = player.Clone()

	if result.GameOver != nil {
		e.finish(room, result.GameOver)
	}

	return result, nil
}

// ResolveDeparture re-evaluates a playing room after a player left it.
// Returns the game over that was applied, or nil if play continues.
func (e *Engine) ResolveDeparture(room *model.Room) *model.GameOver {
	if room.Status != model.RoomStatusPlaying || len(room.Players) == 0 {
		return nil
	}

	var over *model.GameOver
	if room.Mode == model.ModeDuel && len(room.Players) == 1 {
		remaining := room.Players[0]
		if remaining.Outcome == model.OutcomeEliminated {
			over = &model.GameOver{Reason: model.GameOverDraw}
		} else {
			over = &model.GameOver{Winner: remaining.Username, Reason: model.GameOverForfeit}
		}
	} else {
		over = resolve(room)
	}

	if over != nil {
		e.finish(room, over)
	}
	return over
}

// ReturnToLobby resets a finished room so that a new game can be started
func (e *Engine) ReturnToLobby(room *model.Room) error {
	if room.Status != model.RoomStatusFinished {
		return model.ErrGameNotFinished
	}

	for i := range room.Players {
		room.Players[i].Reset()
	}
	room.Status = model.RoomStatusWaiting
	room.SolutionWord = ""
	room.Winner = ""

	e.logger.Info("room returned to lobby", slog.String("room_code", string(room.Code)))
	return nil
}

func (e *Engine) finish(room *model.Room, over *model.GameOver) {
	room.Status = model.RoomStatusFinished
	room.Winner = over.Winner

	e.logger.Info("game over",
		slog.String("room_code", string(room.Code)),
		slog.String("winner", over.Winner),
		slog.String("reason", string(over.Reason)))
}

// resolve applies the mode's end of game policy once a player has left the
// active set. Returns nil while the game should continue.
func resolve(room *model.Room) *model.GameOver {
	if room.Mode == model.ModeBattleRoyale {
		return resolveBattleRoyale(room)
	}

	for _, p := range room.Players {
		if p.HasWon() {
			return &model.GameOver{Winner: p.Username, Reason: model.GameOverSolved}
		}
	}
	if len(room.ActivePlayers()) == 0 {
		return &model.GameOver{Reason: model.GameOverDraw}
	}
	return nil
}

func resolveBattleRoyale(room *model.Room) *model.GameOver {
	active := room.ActivePlayers()
	switch len(active) {
	case 0:
		if best := bestWinner(room.Players); best != nil {
			return &model.GameOver{Winner: best.Username, Reason: model.GameOverAllFinished}
		}
		return &model.GameOver{Reason: model.GameOverDraw}
	case 1:
		return &model.GameOver{Winner: active[0].Username, Reason: model.GameOverLastStanding}
	default:
		return nil
	}
}

// bestWinner picks the player who solved in the fewest attempts, breaking
// ties by who solved first
func bestWinner(players []model.Player) *model.Player {
	var best *model.Player
	for i := range players {
		p := &players[i]
		if !p.HasWon() {
			continue
		}
		if best == nil || p.Score < best.Score ||
			(p.Score == best.Score && solvedAt(p).Before(solvedAt(best))) {
			best = p
		}
	}
	return best
}

func solvedAt(p *model.Player) time.Time {
	if len(p.Guesses) == 0 {
		return time.Time{}
	}
	return p.Guesses[len(p.Guesses)-1].Timestamp
}

// NormalizeGuess trims and uppercases a raw guess
func NormalizeGuess(guess string) string {
	return strings.ToUpper(strings.TrimSpace(guess))
}

// ValidGuessFormat reports whether a normalized guess is exactly five letters
func ValidGuessFormat(word string) bool {
	return len(word) == model.WordLength && dictionary.IsAlpha(word)
}

// RemainingPlayers lists the usernames still able to guess
func RemainingPlayers(room *model.Room) []string {
	names := []string{}
	for _, p := range room.ActivePlayers() {
		names = append(names, p.Username)
	}
	return names
}
