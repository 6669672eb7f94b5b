package dictionary

import (
	"bufio"
	"context"
	_ "embed"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/wordbattle/internal/dependencies/random"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/storage"
)

//go:embed words.txt
var defaultWords string

// Service is the word source: it answers whether a word is valid and
// draws random solution words.
type Service struct {
	storage storage.DictionaryStorage
	random  random.Random
	logger  *slog.Logger

	mu       sync.RWMutex
	words    map[string]struct{}
	byLength map[int][]string
	loaded   bool
}

// New creates a new DictionaryService
func New(storage storage.DictionaryStorage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		random:   random,
		logger:   logger.With(slog.String("component", "dictionary")),
		words:    make(map[string]struct{}),
		byLength: make(map[int][]string),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	s.loadWords(words)
	s.logger.Info("dictionary loaded from storage", slog.Int("word_count", s.WordCount()))
	return nil
}

// LoadFromFile loads dictionary words from a file (one word per line)
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	words, err := readWords(file)
	if err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	s.loadWords(words)
	s.logger.Info("dictionary loaded from file",
		slog.String("path", path),
		slog.Int("word_count", s.WordCount()))
	return nil
}

// LoadDefault loads the built-in word list
func (s *Service) LoadDefault(ctx context.Context) error {
	words, err := readWords(strings.NewReader(defaultWords))
	if err != nil {
		return err
	}
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}
	s.loadWords(words)
	s.logger.Info("default dictionary loaded", slog.Int("word_count", s.WordCount()))
	return nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	s.loadWords(words)
	return nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func (s *Service) loadWords(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	s.byLength = make(map[int][]string)
	for _, word := range words {
		// Store uppercase; solutions and guesses are compared in uppercase
		w := strings.ToUpper(strings.TrimSpace(word))
		if !IsAlpha(w) {
			continue
		}
		if _, dup := s.words[w]; dup {
			continue
		}
		s.words[w] = struct{}{}
		s.byLength[len(w)] = append(s.byLength[len(w)], w)
	}
	s.loaded = true
}

// IsValid checks that word has the given length and exists in the dictionary
func (s *Service) IsValid(word string, length int) bool {
	if len(word) != length {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToUpper(word)]
	return ok
}

// RandomWord returns a random uppercase word of the given length
func (s *Service) RandomWord(length int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := s.byLength[length]
	if !s.loaded || len(candidates) == 0 {
		return "", model.ErrDictionaryNotLoaded
	}
	return candidates[s.random.Intn(len(candidates))], nil
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// IsAlpha reports whether s is non-empty and made only of ASCII letters
func IsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// ServiceInterface is the word source consumed by the game engine
type ServiceInterface interface {
	IsValid(word string, length int) bool
	RandomWord(length int) (string, error)
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadDefault(ctx context.Context) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
