package cards

import (
	"context"

	"github.com/charmbracelet/log"
)

// Fallback asks Primary first and switches to Secondary when Primary fails.
// A short but successful answer from Primary is returned as is.
type Fallback struct {
	Primary   Source
	Secondary Source
	Logger    *log.Logger
}

func (f *Fallback) BlackCards(ctx context.Context, n int, exclude map[string]struct{}) ([]BlackCard, error) {
	found, err := f.Primary.BlackCards(ctx, n, exclude)
	if err == nil {
		return found, nil
	}
	f.warn("black", err)
	return f.Secondary.BlackCards(ctx, n, exclude)
}

func (f *Fallback) WhiteCards(ctx context.Context, n int, exclude map[string]struct{}) ([]WhiteCard, error) {
	found, err := f.Primary.WhiteCards(ctx, n, exclude)
	if err == nil {
		return found, nil
	}
	f.warn("white", err)
	return f.Secondary.WhiteCards(ctx, n, exclude)
}

func (f *Fallback) warn(kind string, err error) {
	if f.Logger == nil {
		return
	}
	f.Logger.Warn("card source unavailable, using fallback", "kind", kind, "error", err)
}
