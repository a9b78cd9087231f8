package util

import (
	"fmt"

	"hpblackjack-server/internal/rng"
)

var adjectives = []string{
	"Lucky", "Bold", "Steady", "Quick", "Cautious", "Daring", "Sly", "Calm", "Reckless", "Happy", "Stoic",
	"Red", "Blue", "Green", "Golden", "Silver", "Fuzzy", "Smiling", "Grand", "Ultimate", "Prime",
	"Wandering", "Growling", "Flying", "Jumping", "Charging", "Bouncing", "Sneaky",
}

var nouns = []string{
	"Ace", "King", "Queen", "Jack", "Dealer", "Gambler", "Shark", "Fox", "Otter", "Wolf", "Tiger",
	"Bear", "Hedgehog", "Panda", "Owl", "Raven", "Badger", "Lynx", "Falcon", "Heron", "Mole",
}

// GetRandomName returns a random name by combining an adjective with a noun
func GetRandomName(gen rng.Generator) string {
	if gen == nil {
		gen = rng.Crypto{}
	}

	return fmt.Sprintf("%s %s", adjectives[gen.Intn(len(adjectives))], nouns[gen.Intn(len(nouns))])
}
