package game

import (
	"testing"
	"time"

	"github.com/mcoot/wordbattle/internal/dependencies/mocks"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/dictionary"
	"github.com/mcoot/wordbattle/internal/storage/memory"
	"github.com/mcoot/wordbattle/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type EngineSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	words  *dictionary.Service
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.words = dictionary.New(memory.New(), s.random, testutil.NopLogger())
	s.Require().NoError(s.words.LoadWords([]string{"crane", "slate", "pious", "ghost"}))
	s.engine = NewEngine(s.words, s.clock, testutil.NopLogger())
}

func (s *EngineSuite) newRoom(mode model.GameMode, usernames ...string) *model.Room {
	room := &model.Room{
		Code:       "ABCDEF",
		Mode:       mode,
		MaxPlayers: mode.MaxPlayers(),
		Status:     model.RoomStatusWaiting,
		CreatedAt:  s.clock.Now(),
	}
	for _, u := range usernames {
		room.Players = append(room.Players, model.NewPlayer(u, s.clock.Now()))
	}
	room.HostID = usernames[0]
	return room
}

func (s *EngineSuite) playingRoom(mode model.GameMode, usernames ...string) *model.Room {
	room := s.newRoom(mode, usernames...)
	s.Require().NoError(s.engine.StartGame(room, "crane"))
	return room
}

func (s *EngineSuite) guess(room *model.Room, username, word string) *GuessResult {
	player := room.GetPlayer(username)
	s.Require().NotNil(player)
	result, err := s.engine.SubmitGuess(room, username, word, len(player.Guesses)+1)
	s.Require().NoError(err)
	return result
}

func (s *EngineSuite) exhaust(room *model.Room, username string) *GuessResult {
	var result *GuessResult
	for range model.MaxGuesses {
		result = s.guess(room, username, "SLATE")
	}
	return result
}

// StartGame tests

func (s *EngineSuite) TestStartGameWithCustomWord() {
	room := s.newRoom(model.ModeDuel, "alice", "bob")

	err := s.engine.StartGame(room, " crane ")
	s.Require().NoError(err)

	s.Equal(model.RoomStatusPlaying, room.Status)
	s.Equal("CRANE", room.SolutionWord)
	s.Equal(1, room.RoundNumber)
	s.Equal(s.clock.Now(), room.GameStartTime)
}

func (s *EngineSuite) TestStartGameWithRandomWord() {
	room := s.newRoom(model.ModeBattleRoyale, "alice", "bob")
	s.random.QueueIntn(3)

	err := s.engine.StartGame(room, "")
	s.Require().NoError(err)
	s.Equal("GHOST", room.SolutionWord)
}

func (s *EngineSuite) TestStartGameResetsPlayers() {
	room := s.newRoom(model.ModeBattleRoyale, "alice", "bob")
	room.Players[0].Guesses = []model.Guess{{Word: "SLATE", AttemptNumber: 1}}
	room.Players[0].Outcome = model.OutcomeWon
	room.Players[0].Score = 1
	room.Players[1].Outcome = model.OutcomeEliminated

	s.Require().NoError(s.engine.StartGame(room, "crane"))

	for _, p := range room.Players {
		s.Empty(p.Guesses)
		s.Equal(model.OutcomeActive, p.Outcome)
		s.Equal(0, p.Score)
	}
}

func (s *EngineSuite) TestStartGameRequiresTwoPlayers() {
	for _, mode := range []model.GameMode{model.ModeDuel, model.ModeBattleRoyale} {
		room := s.newRoom(mode, "alice")

		err := s.engine.StartGame(room, "crane")
		s.ErrorIs(err, model.ErrInsufficientPlayers)
		s.Equal(model.RoomStatusWaiting, room.Status)
	}
}

func (s *EngineSuite) TestStartGameRejectsUnknownCustomWord() {
	room := s.newRoom(model.ModeDuel, "alice", "bob")

	err := s.engine.StartGame(room, "zzzzz")
	s.ErrorIs(err, model.ErrInvalidCustomWord)
	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Empty(room.SolutionWord)
}

func (s *EngineSuite) TestStartGameRejectsWrongLengthCustomWord() {
	room := s.newRoom(model.ModeDuel, "alice", "bob")

	err := s.engine.StartGame(room, "cranes")
	s.ErrorIs(err, model.ErrInvalidCustomWord)
}

func (s *EngineSuite) TestStartGameFailsWhenAlreadyPlaying() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	err := s.engine.StartGame(room, "slate")
	s.ErrorIs(err, model.ErrGameInProgress)
	s.Equal("CRANE", room.SolutionWord)
}

func (s *EngineSuite) TestStartGameFailsWhenFinished() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.guess(room, "alice", "crane")

	err := s.engine.StartGame(room, "slate")
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *EngineSuite) TestStartGameFailsWithEmptyDictionary() {
	engine := NewEngine(dictionary.New(memory.New(), s.random, testutil.NopLogger()), s.clock, testutil.NopLogger())
	room := s.newRoom(model.ModeDuel, "alice", "bob")

	err := engine.StartGame(room, "")
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
	s.Equal(model.RoomStatusWaiting, room.Status)
}

// SubmitGuess tests

func (s *EngineSuite) TestGuessRecorded() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.clock.Advance(5 * time.Second)

	result := s.guess(room, "alice", "slate")

	s.Equal(GuessContinue, result.Outcome)
	s.Nil(result.GameOver)
	s.Require().Len(result.Player.Guesses, 1)
	s.Equal(model.Guess{Word: "SLATE", AttemptNumber: 1, Timestamp: s.clock.Now()}, result.Player.Guesses[0])
	s.Len(room.GetPlayer("alice").Guesses, 1)
}

func (s *EngineSuite) TestGuessFormatIsNotCheckedAgainstDictionary() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	result := s.guess(room, "alice", "qwxyz")
	s.Equal(GuessContinue, result.Outcome)
}

func (s *EngineSuite) TestGuessRejectsBadFormat() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	for _, guess := range []string{"", "cran", "cranes", "cr4ne", "cr ne"} {
		_, err := s.engine.SubmitGuess(room, "alice", guess, 1)
		s.ErrorIs(err, model.ErrInvalidGuessFormat, guess)
	}
	s.Empty(room.GetPlayer("alice").Guesses)
}

func (s *EngineSuite) TestGuessRequiresPlaying() {
	room := s.newRoom(model.ModeDuel, "alice", "bob")

	_, err := s.engine.SubmitGuess(room, "alice", "crane", 1)
	s.ErrorIs(err, model.ErrGameNotInProgress)
}

func (s *EngineSuite) TestGuessFromUnknownPlayer() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	_, err := s.engine.SubmitGuess(room, "mallory", "crane", 1)
	s.ErrorIs(err, model.ErrPlayerNotFoundOrEliminated)
}

func (s *EngineSuite) TestGuessFromEliminatedPlayer() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol")
	s.exhaust(room, "alice")

	_, err := s.engine.SubmitGuess(room, "alice", "crane", 7)
	s.ErrorIs(err, model.ErrPlayerNotFoundOrEliminated)
}

func (s *EngineSuite) TestGuessFillsMissingAttemptNumber() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.guess(room, "alice", "slate")

	result, err := s.engine.SubmitGuess(room, "alice", "pious", 0)
	s.Require().NoError(err)
	s.Equal(2, result.Guess.AttemptNumber)
}

// Duel tests

func (s *EngineSuite) TestDuelExactMatchEndsGame() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.guess(room, "alice", "slate")

	result := s.guess(room, "alice", "CRANE")

	s.Equal(GuessWon, result.Outcome)
	s.Require().NotNil(result.GameOver)
	s.Equal("alice", result.GameOver.Winner)
	s.Equal(model.GameOverSolved, result.GameOver.Reason)
	s.Equal(model.RoomStatusFinished, room.Status)
	s.Equal("alice", room.Winner)

	alice := room.GetPlayer("alice")
	s.True(alice.HasWon())
	s.Equal(2, alice.Score)
	s.False(alice.IsEliminated(room.Mode))
}

func (s *EngineSuite) TestDuelExhaustionWhileOpponentPlays() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	result := s.exhaust(room, "alice")

	s.Equal(GuessEliminated, result.Outcome)
	s.Nil(result.GameOver)
	s.Equal(model.RoomStatusPlaying, room.Status)
	s.True(room.GetPlayer("alice").IsEliminated(room.Mode))
}

func (s *EngineSuite) TestDuelMutualExhaustionIsDraw() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.exhaust(room, "alice")

	result := s.exhaust(room, "bob")

	s.Equal(GuessEliminated, result.Outcome)
	s.Require().NotNil(result.GameOver)
	s.True(result.GameOver.IsDraw())
	s.Equal(model.GameOverDraw, result.GameOver.Reason)
	s.Equal(model.RoomStatusFinished, room.Status)
	s.Empty(room.Winner)
}

func (s *EngineSuite) TestDuelWinAfterOpponentExhausted() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.exhaust(room, "alice")

	result := s.guess(room, "bob", "crane")

	s.Require().NotNil(result.GameOver)
	s.Equal("bob", result.GameOver.Winner)
}

func (s *EngineSuite) TestFinishedRejectsFurtherGuesses() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.guess(room, "alice", "crane")

	_, err := s.engine.SubmitGuess(room, "bob", "crane", 1)
	s.ErrorIs(err, model.ErrGameNotInProgress)
	s.Empty(room.GetPlayer("bob").Guesses)
}

// Battle royale tests

func (s *EngineSuite) TestBattleRoyaleTwoPlayerWinLeavesLastStanding() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob")

	result := s.guess(room, "alice", "crane")

	s.Equal(GuessWon, result.Outcome)
	s.Require().NotNil(result.GameOver)
	s.Equal("bob", result.GameOver.Winner)
	s.Equal(model.GameOverLastStanding, result.GameOver.Reason)
	s.True(room.GetPlayer("alice").IsEliminated(room.Mode))
}

func (s *EngineSuite) TestBattleRoyaleThreePlayers() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol")

	// A wins on attempt 3 and retires; two remain so play continues
	s.guess(room, "alice", "slate")
	s.guess(room, "alice", "pious")
	result := s.guess(room, "alice", "crane")

	s.Equal(GuessWon, result.Outcome)
	s.Nil(result.GameOver)
	s.Equal(model.RoomStatusPlaying, room.Status)
	s.Equal(3, room.GetPlayer("alice").Score)
	s.Equal([]string{"bob", "carol"}, RemainingPlayers(room))

	// B exhausts six guesses; C is the last one standing
	result = s.exhaust(room, "bob")

	s.Equal(GuessEliminated, result.Outcome)
	s.Require().NotNil(result.GameOver)
	s.Equal("carol", result.GameOver.Winner)
	s.Equal(model.RoomStatusFinished, room.Status)
	s.Equal("carol", room.Winner)
}

func (s *EngineSuite) TestBattleRoyaleEliminationContinues() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol")

	result := s.exhaust(room, "alice")

	s.Equal(GuessEliminated, result.Outcome)
	s.Nil(result.GameOver)
	s.Equal([]string{"bob", "carol"}, RemainingPlayers(room))
}

// Departure tests

func (s *EngineSuite) TestDuelDepartureIsForfeit() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	room.RemovePlayer("alice")

	over := s.engine.ResolveDeparture(room)

	s.Require().NotNil(over)
	s.Equal("bob", over.Winner)
	s.Equal(model.GameOverForfeit, over.Reason)
	s.Equal(model.RoomStatusFinished, room.Status)
}

func (s *EngineSuite) TestDuelDepartureWithExhaustedRemainingIsDraw() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.exhaust(room, "bob")
	room.RemovePlayer("alice")

	over := s.engine.ResolveDeparture(room)

	s.Require().NotNil(over)
	s.True(over.IsDraw())
}

func (s *EngineSuite) TestBattleRoyaleDepartureLastStanding() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol")
	s.exhaust(room, "alice")
	room.RemovePlayer("bob")

	over := s.engine.ResolveDeparture(room)

	s.Require().NotNil(over)
	s.Equal("carol", over.Winner)
}

func (s *EngineSuite) TestBattleRoyaleDepartureContinues() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol")
	room.RemovePlayer("alice")

	s.Nil(s.engine.ResolveDeparture(room))
	s.Equal(model.RoomStatusPlaying, room.Status)
}

func (s *EngineSuite) TestBattleRoyaleDepartureBestRetiredWinner() {
	room := s.playingRoom(model.ModeBattleRoyale, "alice", "bob", "carol", "dave")
	s.guess(room, "alice", "slate")
	s.guess(room, "alice", "crane")
	s.guess(room, "bob", "crane")
	room.RemovePlayer("carol")
	room.RemovePlayer("dave")

	over := s.engine.ResolveDeparture(room)

	s.Require().NotNil(over)
	s.Equal("bob", over.Winner)
	s.Equal(model.GameOverAllFinished, over.Reason)
}

func (s *EngineSuite) TestDepartureIgnoredWhenNotPlaying() {
	room := s.newRoom(model.ModeDuel, "alice", "bob")
	room.RemovePlayer("alice")

	s.Nil(s.engine.ResolveDeparture(room))
	s.Equal(model.RoomStatusWaiting, room.Status)
}

// ReturnToLobby tests

func (s *EngineSuite) TestReturnToLobby() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")
	s.guess(room, "alice", "crane")

	err := s.engine.ReturnToLobby(room)
	s.Require().NoError(err)

	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Empty(room.SolutionWord)
	s.Empty(room.Winner)
	for _, p := range room.Players {
		s.Empty(p.Guesses)
		s.Equal(model.OutcomeActive, p.Outcome)
	}

	s.Require().NoError(s.engine.StartGame(room, "slate"))
	s.Equal("SLATE", room.SolutionWord)
}

func (s *EngineSuite) TestReturnToLobbyRequiresFinished() {
	room := s.playingRoom(model.ModeDuel, "alice", "bob")

	err := s.engine.ReturnToLobby(room)
	s.ErrorIs(err, model.ErrGameNotFinished)
	s.Equal(model.RoomStatusPlaying, room.Status)
}

func TestValidGuessFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"five letters", "CRANE", true},
		{"too short", "CRAN", false},
		{"too long", "CRANES", false},
		{"digit", "CR4NE", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidGuessFormat(tt.input); got != tt.expected {
				t.Errorf("ValidGuessFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
