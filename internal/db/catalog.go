package db

import (
	"context"

	"card-czar/internal/cards"

	"gorm.io/gorm"
)

// Catalog serves cards from the imported card tables, restricted to Packs
// when that list is non-empty.
type Catalog struct {
	conn  *gorm.DB
	packs []string
}

func NewCatalog(conn *gorm.DB, packs []string) *Catalog {
	return &Catalog{conn: conn, packs: append([]string(nil), packs...)}
}

type catalogRow struct {
	Text string
	Pick int
	Pack string
}

func (c *Catalog) BlackCards(ctx context.Context, n int, exclude map[string]struct{}) ([]cards.BlackCard, error) {
	rows, err := c.draw(ctx, CardKindBlack, n, exclude)
	if err != nil {
		return nil, err
	}
	out := make([]cards.BlackCard, 0, len(rows))
	for _, row := range rows {
		out = append(out, cards.BlackCard{Text: row.Text, Pick: row.Pick, Pack: row.Pack})
	}
	return out, nil
}

func (c *Catalog) WhiteCards(ctx context.Context, n int, exclude map[string]struct{}) ([]cards.WhiteCard, error) {
	rows, err := c.draw(ctx, CardKindWhite, n, exclude)
	if err != nil {
		return nil, err
	}
	out := make([]cards.WhiteCard, 0, len(rows))
	for _, row := range rows {
		out = append(out, cards.WhiteCard{Text: row.Text, Pack: row.Pack})
	}
	return out, nil
}

func (c *Catalog) draw(ctx context.Context, kind string, n int, exclude map[string]struct{}) ([]catalogRow, error) {
	if n <= 0 {
		return nil, nil
	}
	query := c.conn.WithContext(ctx).
		Table("cards").
		Select("cards.text AS text, cards.pick AS pick, card_packs.name AS pack").
		Joins("JOIN card_packs ON card_packs.id = cards.pack_id").
		Where("cards.kind = ?", kind)
	if len(c.packs) > 0 {
		query = query.Where("card_packs.name IN ?", c.packs)
	}
	if exclusions := cards.ExcludedTexts(exclude); len(exclusions) > 0 {
		query = query.Where("cards.text NOT IN ?", exclusions)
	}
	var rows []catalogRow
	if err := query.Order("random()").Limit(n).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
