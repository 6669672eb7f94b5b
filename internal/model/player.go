package model

import "time"

// PlayerOutcome tags where a player stands in the current round
type PlayerOutcome string

const (
	OutcomeActive     PlayerOutcome = "active"     // Still guessing
	OutcomeWon        PlayerOutcome = "won"        // Guessed the word and retired from the round
	OutcomeEliminated PlayerOutcome = "eliminated" // Ran out of guesses
)

// Guess is a single submitted word
type Guess struct {
	Word          string
	AttemptNumber int
	Timestamp     time.Time
}

// Player is a participant owned by exactly one room
type Player struct {
	Username string
	Score    int // Attempt number at time of winning, 0 until won
	Outcome  PlayerOutcome
	Guesses  []Guess
	JoinedAt time.Time
}

// NewPlayer creates an active player with no guesses
func NewPlayer(username string, joinedAt time.Time) Player {
	return Player{
		Username: username,
		Outcome:  OutcomeActive,
		Guesses:  []Guess{},
		JoinedAt: joinedAt,
	}
}

// CanGuess returns true while the player is still in the round
func (p *Player) CanGuess() bool {
	return p.Outcome == OutcomeActive
}

// HasWon returns true if the player guessed the solution
func (p *Player) HasWon() bool {
	return p.Outcome == OutcomeWon
}

// IsEliminated reports the wire-level eliminated flag. In battle royale a
// winner retires from the round and is reported as eliminated too.
func (p *Player) IsEliminated(mode GameMode) bool {
	switch p.Outcome {
	case OutcomeEliminated:
		return true
	case OutcomeWon:
		return mode == ModeBattleRoyale
	default:
		return false
	}
}

// GuessesExhausted returns true once the player has used every guess
func (p *Player) GuessesExhausted() bool {
	return len(p.Guesses) >= MaxGuesses
}

// Reset prepares the player for a fresh round
func (p *Player) Reset() {
	p.Guesses = []Guess{}
	p.Outcome = OutcomeActive
	p.Score = 0
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	guesses := make([]Guess, len(p.Guesses))
	copy(guesses, p.Guesses)
	p.Guesses = guesses
	return p
}
