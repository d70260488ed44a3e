package cards

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadPacksCSV reads packs from a CSV file with a header row and the columns
// pack, kind, text and an optional pick. Kind is "black" or "white". Rows are
// grouped into packs in first-seen order and cleaned the same way ReadPacks
// cleans JSON input.
func ReadPacksCSV(path string) ([]Pack, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var order []string
	byName := make(map[string]*Pack)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		name := strings.TrimSpace(row[0])
		kind := strings.ToLower(strings.TrimSpace(row[1]))
		text := strings.TrimSpace(row[2])
		if name == "" || text == "" {
			continue
		}
		pack, ok := byName[name]
		if !ok {
			pack = &Pack{Name: name}
			byName[name] = pack
			order = append(order, name)
		}
		switch kind {
		case "black":
			pick := 0
			if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
				pick, err = strconv.Atoi(strings.TrimSpace(row[3]))
				if err != nil {
					return nil, fmt.Errorf("row %d: bad pick %q", i+1, row[3])
				}
			}
			pack.Black = append(pack.Black, BlackCard{Text: text, Pick: pick})
		case "white":
			pack.White = append(pack.White, WhiteCard{Text: text})
		default:
			return nil, fmt.Errorf("row %d: unknown kind %q", i+1, row[1])
		}
	}

	packs := make([]Pack, 0, len(order))
	for _, name := range order {
		packs = append(packs, *byName[name])
	}
	return cleanPacks(packs), nil
}
