package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "wbgame"

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
