package factory

import (
	"time"

	"github.com/mcoot/wordbattle/internal/dependencies/mocks"
	"github.com/mcoot/wordbattle/internal/storage/memory"
	"github.com/mcoot/wordbattle/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig creates a test App with memory storage, mocked
// dependencies and the given room settings
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestWords is the word list loaded by LoadTestDictionary. With no queued
// random values the first word is picked as the solution.
var TestWords = []string{
	"crane", "slate", "pious", "ghost", "adieu",
	"brick", "flame", "grape", "house", "jumbo",
	"knelt", "lemon", "mango", "night", "ocean",
	"plumb", "quart", "river", "storm", "tiger",
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(TestWords)
}
