package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const maxUsernameLen = 30

var (
	usernameAdjectives = []string{
		"brave", "calm", "clever", "eager", "gentle", "happy", "jolly", "kind",
		"lively", "lucky", "mellow", "nimble", "proud", "quick", "quiet", "sunny",
		"swift", "witty", "bold", "bright",
	}
	usernameNouns = []string{
		"otter", "falcon", "panda", "tiger", "river", "maple", "comet", "harbor",
		"badger", "lynx", "heron", "cedar", "meadow", "pebble", "summit", "wolf",
		"sparrow", "canyon", "koala", "orca",
	}
)

// randomUsername returns adjective+noun+4 digits, e.g. "bravecomet0421".
func randomUsername() (string, error) {
	adj, err := pick(usernameAdjectives)
	if err != nil {
		return "", err
	}
	noun, err := pick(usernameNouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate username suffix: %w", err)
	}

	name := fmt.Sprintf("%s%s%04d", adj, noun, n.Int64())
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	return name, nil
}

func pick(words []string) (string, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", fmt.Errorf("failed to pick username word: %w", err)
	}
	return words[i.Int64()], nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
