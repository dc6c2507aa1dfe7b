package service

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"sales_bot/internal/storage"
)

const noticeHeader = "Новое объявление по вашей подписке"

// RenderNotice builds the text sent to a subscriber about a new ad.
//
//	header
//	title
//	Модель / Год / Цена lines, each omitted when empty or zero
//	auction line when bidding is enabled
func RenderNotice(ad storage.Ad) string {
	var b strings.Builder
	b.WriteString(noticeHeader)
	b.WriteString("\n\n")

	title := strings.TrimSpace(ad.Title)
	if title == "" {
		title = fmt.Sprintf("Объявление #%d", ad.ID)
	}
	b.WriteString(title)

	if m := strings.TrimSpace(ad.Model); m != "" {
		fmt.Fprintf(&b, "\nМодель: %s", m)
	}
	if ad.Year > 0 {
		fmt.Fprintf(&b, "\nГод: %d", ad.Year)
	}
	if ad.Price > 0 {
		fmt.Fprintf(&b, "\nЦена: %s ₽", strings.ReplaceAll(humanize.Comma(ad.Price), ",", " "))
	}
	switch ad.AuctionMode {
	case storage.AuctionAscending:
		b.WriteString("\nАукцион: на повышение")
	case storage.AuctionDescending:
		b.WriteString("\nАукцион: на понижение")
	}
	return b.String()
}
