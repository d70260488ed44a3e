package db

import (
	"card-czar/internal/cards"

	"gorm.io/gorm"
)

type PackImport struct {
	Pack       string
	BlackAdded int
	WhiteAdded int
}

// ImportPacks upserts packs and adds the cards each pack does not hold yet.
// Pack card counts are recomputed afterwards.
func ImportPacks(conn *gorm.DB, packs []cards.Pack) ([]PackImport, error) {
	if conn == nil {
		return nil, nil
	}
	results := make([]PackImport, 0, len(packs))
	for _, pack := range packs {
		result := PackImport{Pack: pack.Name}
		err := conn.Transaction(func(tx *gorm.DB) error {
			record := CardPack{Name: pack.Name}
			if err := tx.FirstOrCreate(&record, CardPack{Name: pack.Name}).Error; err != nil {
				return err
			}
			var existing []string
			if err := tx.Model(&Card{}).Where("pack_id = ?", record.ID).Pluck("text", &existing).Error; err != nil {
				return err
			}
			known := make(map[string]struct{}, len(existing))
			for _, text := range existing {
				known[text] = struct{}{}
			}
			var fresh []Card
			for _, card := range pack.Black {
				if _, ok := known[card.Text]; ok {
					continue
				}
				known[card.Text] = struct{}{}
				fresh = append(fresh, Card{PackID: record.ID, Kind: CardKindBlack, Text: card.Text, Pick: card.Pick})
				result.BlackAdded++
			}
			for _, card := range pack.White {
				if _, ok := known[card.Text]; ok {
					continue
				}
				known[card.Text] = struct{}{}
				fresh = append(fresh, Card{PackID: record.ID, Kind: CardKindWhite, Text: card.Text, Pick: 1})
				result.WhiteAdded++
			}
			if len(fresh) > 0 {
				if err := tx.CreateInBatches(&fresh, 500).Error; err != nil {
					return err
				}
			}
			var black, white int64
			if err := tx.Model(&Card{}).Where("pack_id = ? AND kind = ?", record.ID, CardKindBlack).Count(&black).Error; err != nil {
				return err
			}
			if err := tx.Model(&Card{}).Where("pack_id = ? AND kind = ?", record.ID, CardKindWhite).Count(&white).Error; err != nil {
				return err
			}
			return tx.Model(&record).Updates(map[string]any{
				"black_card_count": black,
				"white_card_count": white,
			}).Error
		})
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
