package registry

import (
	"fmt"
	"math/rand"
)

// colorPalette holds visually distinct colors that read well on both light
// and dark backgrounds. When every palette color is held by a connected user,
// assignment falls back to a random HSL color; fallback colors are not
// guaranteed unique.
var colorPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85929E", "#D7BDE2",
	"#A9DFBF", "#F9E79F", "#D5A6BD", "#A3E4D7", "#FADBD8",
	"#E8DAEF", "#D6EAF8", "#FCF3CF", "#EBDEF0", "#D1F2EB",
	"#FDF2E9", "#EAEDED", "#FEF9E7", "#F4F6F6", "#1B2631",
}

var nameAdjectives = []string{
	"Swift", "Clever", "Brave", "Bright", "Quick", "Smart", "Bold", "Cool",
	"Epic", "Fire", "Mega", "Super", "Ultra", "Hyper", "Turbo", "Ninja",
	"Cosmic", "Stellar", "Mystic", "Phoenix", "Dragon", "Thunder", "Lightning",
	"Frost", "Blaze", "Storm", "Crystal", "Golden", "Silver", "Royal",
}

var nameNouns = []string{
	"Player", "Gamer", "Hero", "Champion", "Master", "Wizard", "Knight", "Warrior",
	"Explorer", "Hunter", "Seeker", "Raider", "Guardian", "Defender", "Conqueror",
	"Pioneer", "Voyager", "Ranger", "Scout", "Captain", "Commander", "Admiral",
	"Fox", "Wolf", "Eagle", "Hawk", "Tiger", "Lion", "Bear", "Shark",
}

// randomName builds a display name like "SwiftFox42".
func randomName() string {
	adjective := nameAdjectives[rand.Intn(len(nameAdjectives))]
	noun := nameNouns[rand.Intn(len(nameNouns))]
	number := rand.Intn(999) + 1

	return fmt.Sprintf("%s%s%d", adjective, noun, number)
}

// randomFallbackColor generates a bright HSL color for when the palette
// is exhausted.
func randomFallbackColor() string {
	hue := rand.Intn(360)
	saturation := 70 + rand.Intn(30)
	lightness := 45 + rand.Intn(25)

	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, saturation, lightness)
}
