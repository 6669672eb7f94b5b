package e2e_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordbattle/internal/cli"
	"github.com/mcoot/wordbattle/internal/factory"
)

// cliRunner runs the CLI in process against a server
type cliRunner struct {
	serverURL string
}

func newCLIRunner(serverURL string) *cliRunner {
	return &cliRunner{serverURL: serverURL}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runWithInput("", "json", args...)
}

func (r *cliRunner) runText(args ...string) (string, error) {
	return r.runWithInput("", "text", args...)
}

func (r *cliRunner) runWithInput(input, output string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", output,
	}, args...)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(fullArgs)

	err := cmd.Execute()
	return out.String(), err
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	require.NoError(t, app.LoadDictionary(t.Context()))

	server := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		server.Close()
		_ = app.Close()
	})
	return server
}

// Response types for JSON parsing
type roomResponse struct {
	Code    string `json:"roomCode"`
	HostID  string `json:"hostId"`
	Mode    string `json:"mode"`
	Status  string `json:"status"`
	Players []struct {
		Username string `json:"username"`
		Outcome  string `json:"outcome"`
	} `json:"players"`
	Winner       *string `json:"winner"`
	SolutionWord string  `json:"solutionWord"`
}

type countsResponse struct {
	Total    int `json:"total"`
	Waiting  int `json:"waiting"`
	Playing  int `json:"playing"`
	Finished int `json:"finished"`
}

type healthResponse struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionaryLoaded"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func createRoom(t *testing.T, runner *cliRunner, username, mode string) roomResponse {
	t.Helper()

	output, err := runner.run("room", "create", username, "--mode", mode)
	require.NoError(t, err, output)

	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room), output)
	require.Len(t, room.Code, 6)
	return room
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	output, err := runner.run("health")
	require.NoError(t, err, output)

	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.DictionaryLoaded)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	room := createRoom(t, runner, "alice", "battle_royale")
	assert.Equal(t, "alice", room.HostID)
	assert.Equal(t, "battle_royale", room.Mode)
	assert.Equal(t, "waiting", room.Status)

	// Join using a lowercase code
	output, err := runner.run("room", "join", strings.ToLower(room.Code), "bob")
	require.NoError(t, err, output)

	var joined roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &joined))
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "bob", joined.Players[1].Username)

	output, err = runner.run("room", "get", room.Code)
	require.NoError(t, err, output)

	var fetched roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fetched))
	assert.Len(t, fetched.Players, 2)

	output, err = runner.run("room", "stats")
	require.NoError(t, err, output)

	var counts countsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &counts))
	assert.Equal(t, countsResponse{Total: 1, Waiting: 1}, counts)

	output, err = runner.run("room", "delete", room.Code)
	require.NoError(t, err, output)

	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Contains(t, msg.Message, room.Code)

	output, err = runner.run("room", "get", room.Code)
	assert.Error(t, err)
	assert.Contains(t, output, "ROOM_NOT_FOUND")
}

func TestCLI_TextOutput(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	output, err := runner.runText("room", "create", "alice")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Room: ")
	assert.Contains(t, output, "Mode: duel")
	assert.Contains(t, output, "Players (1/2):")
	assert.Contains(t, output, "alice [host]")

	output, err = runner.runText("health")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Status: ok")
}

func TestCLI_PlayDuel(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	room := createRoom(t, runner, "alice", "duel")
	output, err := runner.run("room", "join", room.Code, "bob")
	require.NoError(t, err, output)

	script := strings.Join([]string{"/start crane", "slate", "crane", ""}, "\n")
	output, err = runner.runWithInput(script, "text", "play", room.Code, "alice", "--linger", "2s")
	require.NoError(t, err, output)

	assert.Contains(t, output, "Connected")
	assert.Contains(t, output, "Game started in "+room.Code+" (duel, round 1)")
	assert.Contains(t, output, "alice guessed SLATE (attempt 1)")
	assert.Contains(t, output, "alice guessed CRANE (attempt 2) and solved it")
	assert.Contains(t, output, "Game over: alice won (solved). The word was CRANE")

	// The solution is not announced before the game ends
	firstGuess := strings.Index(output, "alice guessed")
	require.Positive(t, firstGuess)
	assert.NotContains(t, output[:firstGuess], "CRANE")

	// Disconnecting removes alice; bob becomes host of the finished room
	var after roomResponse
	require.Eventually(t, func() bool {
		output, err := runner.run("room", "get", room.Code)
		if err != nil || json.Unmarshal([]byte(output), &after) != nil {
			return false
		}
		return len(after.Players) == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "finished", after.Status)
	assert.Equal(t, "bob", after.HostID)
	require.NotNil(t, after.Winner)
	assert.Equal(t, "alice", *after.Winner)
	assert.Equal(t, "CRANE", after.SolutionWord)
}

func TestCLI_PlayJSONFrames(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	room := createRoom(t, runner, "alice", "duel")

	output, err := runner.runWithInput("/status\n", "json", "play", room.Code, "alice", "--linger", "1s")
	require.NoError(t, err, output)

	events := []string{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		var frame struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &frame), line)
		events = append(events, frame.Event)
	}
	assert.Contains(t, events, "connected")
	assert.Contains(t, events, "room-updated")
	assert.Contains(t, events, "room-status")
}

func TestCLI_PlayErrors(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	output, err := runner.runWithInput("", "text", "play", "NOPE00", "alice", "--linger", "1s")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Error: Room not found (ROOM_NOT_FOUND)")

	room := createRoom(t, runner, "alice", "duel")
	output, err = runner.runWithInput("/start\n/dance\n", "text", "play", room.Code, "alice", "--linger", "1s")
	require.NoError(t, err, output)
	assert.Contains(t, output, "INSUFFICIENT_PLAYERS")
	assert.Contains(t, output, "Unknown command /dance")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(ts.URL)

	output, err := runner.run("room", "create", "alice", "--mode", "solo")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_MODE")

	room := createRoom(t, runner, "alice", "duel")
	_, err = runner.run("room", "join", room.Code, "bob")
	require.NoError(t, err)

	output, err = runner.run("room", "join", room.Code, "carol")
	assert.Error(t, err)
	assert.Contains(t, output, "ROOM_FULL")

	// A full room reports ROOM_FULL even to a name already in it
	output, err = runner.run("room", "join", room.Code, "bob")
	assert.Error(t, err)
	assert.Contains(t, output, "ROOM_FULL")

	brRoom := createRoom(t, runner, "alice", "battle_royale")
	output, err = runner.run("room", "join", brRoom.Code, "alice")
	assert.Error(t, err)
	assert.Contains(t, output, "USERNAME_TAKEN")

	_, err = runner.run("room", "get")
	assert.Error(t, err)

	output, err = newCLIRunner("ftp://example.com").runWithInput("", "text", "play", room.Code, "dave")
	assert.Error(t, err)
	assert.Contains(t, output, "unsupported server URL scheme")
}
