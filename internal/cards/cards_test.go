package cards

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHonoursExclusions(t *testing.T) {
	black, white := FallbackDeck()
	src := NewStatic(black, white, rand.New(rand.NewPCG(1, 2)))

	exclude := map[string]struct{}{"Robots": {}, "Merge conflicts": {}}
	got, err := src.WhiteCards(context.Background(), len(white), exclude)
	require.NoError(t, err)
	assert.Len(t, got, len(white)-2)
	for _, card := range got {
		assert.NotContains(t, exclude, card.Text)
	}
}

func TestStaticReturnsShortWhenExhausted(t *testing.T) {
	src := NewStatic(nil, []WhiteCard{{Text: "a"}, {Text: "b"}}, nil)
	got, err := src.WhiteCards(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := src.BlackCards(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

type failingSource struct{}

func (failingSource) BlackCards(context.Context, int, map[string]struct{}) ([]BlackCard, error) {
	return nil, errors.New("connection refused")
}

func (failingSource) WhiteCards(context.Context, int, map[string]struct{}) ([]WhiteCard, error) {
	return nil, errors.New("connection refused")
}

func TestFallbackSwitchesOnError(t *testing.T) {
	secondary := NewStatic([]BlackCard{{Text: "q", Pick: 1}}, []WhiteCard{{Text: "a"}}, nil)
	src := &Fallback{Primary: failingSource{}, Secondary: secondary}

	black, err := src.BlackCards(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", black[0].Text)

	white, err := src.WhiteCards(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", white[0].Text)
}

func TestReadPacksCleansInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	body := `[
		{"name": "  Geek Pack ", "black": [{"text": "Why? ", "pick": 0}, {"text": "Why?"}], "white": [{"text": "Lasers"}, {"text": " "}, {"text": "Why?"}]},
		{"name": "", "white": [{"text": "ignored"}]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	packs, err := ReadPacks(path)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, "Geek Pack", packs[0].Name)
	assert.Equal(t, []BlackCard{{Text: "Why?", Pick: 1, Pack: "Geek Pack"}}, packs[0].Black)
	assert.Equal(t, []WhiteCard{{Text: "Lasers", Pack: "Geek Pack"}}, packs[0].White)
}

func TestReadPacksCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")
	body := "pack,kind,text,pick\n" +
		"Geek Pack,black,What compiles?,\n" +
		"Geek Pack,white,Lasers\n" +
		"Dev Pack,black,_____ and _____,2\n" +
		"Geek Pack,white, Lasers \n" +
		",white,orphan\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	packs, err := ReadPacksCSV(path)
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "Geek Pack", packs[0].Name)
	assert.Equal(t, []BlackCard{{Text: "What compiles?", Pick: 1, Pack: "Geek Pack"}}, packs[0].Black)
	assert.Equal(t, []WhiteCard{{Text: "Lasers", Pack: "Geek Pack"}}, packs[0].White)
	assert.Equal(t, 2, packs[1].Black[0].Pick)

	counted := filepath.Join(t.TempDir(), "counted.csv")
	require.NoError(t, os.WriteFile(counted, []byte("pack,kind,text,pick\nP,black,_____ + _____ = _____,1\n"), 0o600))
	packs, err = ReadPacksCSV(counted)
	require.NoError(t, err)
	assert.Equal(t, 3, packs[0].Black[0].Pick)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("pack,kind,text\nP,grey,text\n"), 0o600))
	_, err = ReadPacksCSV(bad)
	require.Error(t, err)
}

func TestPickCount(t *testing.T) {
	tests := []struct {
		text     string
		declared int
		want     int
	}{
		{"Why?", 0, 1},
		{"Step 1: _____. Step 2: _____. Step 3: Profit.", 0, 2},
		{"_____ + _____ = _____", 1, 3},
		{"Make a haiku.", 3, 3},
		{"I drink to forget _.", 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PickCount(tt.text, tt.declared), tt.text)
	}
}

func TestReadPacksCountsBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	body := `[{"name": "P", "black": [
		{"text": "Step 1: _____. Step 2: _____. Step 3: Profit."},
		{"text": "_____ + _____ = _____", "pick": 1}
	]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	packs, err := ReadPacks(path)
	require.NoError(t, err)
	require.Len(t, packs[0].Black, 2)
	assert.Equal(t, 2, packs[0].Black[0].Pick)
	assert.Equal(t, 3, packs[0].Black[1].Pick)
}
