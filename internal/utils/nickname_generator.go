package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var nicknameAdjectives = []string{
	"Bullish", "Bearish", "Steady", "Rapid", "Patient",
	"Fearless", "Sharp", "Quiet", "Lucky", "Contrarian",
	"Nimble", "Calm", "Hungry", "Focused", "Relentless",
	"Midnight", "Early", "Cosmic", "Electric", "Stubborn",
}

var nicknameNouns = []string{
	"Scalper", "Hedger", "Whale", "Bull", "Bear",
	"Sniper", "Pilot", "Drifter", "Maverick", "Baron",
	"Wizard", "Nomad", "Captain", "Hustler", "Oracle",
	"Falcon", "Shark", "Fox", "Tycoon", "Rookie",
}

// GenerateNickname returns a random handle like "Bullish_Whale_0042" for
// users who sign up without picking one.
func GenerateNickname() (string, error) {
	adjective, err := pickRandom(nicknameAdjectives)
	if err != nil {
		return "", err
	}
	noun, err := pickRandom(nicknameNouns)
	if err != nil {
		return "", err
	}
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to draw nickname suffix: %w", err)
	}
	return fmt.Sprintf("%s_%s_%04d", adjective, noun, suffix.Int64()), nil
}

func pickRandom(words []string) (string, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", fmt.Errorf("failed to draw nickname word: %w", err)
	}
	return words[idx.Int64()], nil
}
