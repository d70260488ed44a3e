package cards

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

// Pack is one named collection of cards as found in an import file.
type Pack struct {
	Name  string      `json:"name"`
	Black []BlackCard `json:"black"`
	White []WhiteCard `json:"white"`
}

// ReadPacks parses a JSON array of packs. Nameless packs and blank cards are
// dropped, texts are trimmed and repeated texts inside a pack are kept once.
// Pick counts are corrected with PickCount.
func ReadPacks(path string) ([]Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []Pack
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return cleanPacks(raw), nil
}

func cleanPacks(raw []Pack) []Pack {
	packs := make([]Pack, 0, len(raw))
	for _, pack := range raw {
		name := strings.TrimSpace(pack.Name)
		if name == "" {
			continue
		}
		seen := make(map[string]struct{})
		clean := Pack{Name: name}
		for _, card := range pack.Black {
			text := strings.TrimSpace(card.Text)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			clean.Black = append(clean.Black, BlackCard{Text: text, Pick: PickCount(text, card.Pick), Pack: name})
		}
		for _, card := range pack.White {
			text := strings.TrimSpace(card.Text)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			clean.White = append(clean.White, WhiteCard{Text: text, Pack: name})
		}
		packs = append(packs, clean)
	}
	return packs
}

var blankRun = regexp.MustCompile(`_+`)

// PickCount is the number of answers a prompt takes: its declared count or
// the number of blanks in the text, whichever is larger, and never below 1.
func PickCount(text string, declared int) int {
	return max(declared, len(blankRun.FindAllStringIndex(text, -1)), 1)
}
