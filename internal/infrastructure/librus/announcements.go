package librus

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlakM/czujka-librus/internal/domain"
)

// Announcements scrapes the announcement board. Each announcement is one
// decorated table: the title sits in the table head, the author, date and
// body in labeled rows.
func (c *Client) Announcements(ctx context.Context) ([]domain.Announcement, error) {
	doc, err := c.fetchDocument(ctx, "/ogloszenia")
	if err != nil {
		return nil, fmt.Errorf("fetch announcements: %w", err)
	}

	var out []domain.Announcement
	doc.Find("table.decorated.big").Each(func(_ int, tbl *goquery.Selection) {
		a := domain.Announcement{
			Title: strings.TrimSpace(tbl.Find("thead").First().Text()),
		}
		tbl.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			label := strings.TrimSpace(row.Find("th").First().Text())
			value := strings.TrimSpace(row.Find("td").First().Text())
			switch label {
			case "Dodał":
				a.Author = value
			case "Data publikacji":
				a.Date = value
			case "Treść":
				a.Content = value
			}
		})
		out = append(out, a)
	})

	return out, nil
}
