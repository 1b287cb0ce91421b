package librus

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlakM/czujka-librus/internal/domain"
)

var eventIDExpr = regexp.MustCompile(`/terminarz/szczegoly/(\d+)`)

// Calendar scrapes the month view. Day cells without a detail link are
// placeholders and yield the sentinel id -1, which pipelines skip before
// identity resolution.
func (c *Client) Calendar(ctx context.Context, month time.Month, year int) ([]domain.CalendarDay, error) {
	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/terminarz?miesiac=%d&rok=%d", int(month), year))
	if err != nil {
		return nil, fmt.Errorf("fetch calendar %d-%02d: %w", year, int(month), err)
	}

	var out []domain.CalendarDay
	doc.Find("div.kalendarz-dzien").Each(func(_ int, cell *goquery.Selection) {
		dayNumber := strings.TrimSpace(cell.Find(".kalendarz-numer-dnia").First().Text())
		if dayNumber == "" {
			return
		}
		day := domain.CalendarDay{
			Day: fmt.Sprintf("%d-%02d-%02d", year, int(month), atoiOrZero(dayNumber)),
		}

		cell.Find("div.kalendarz-event").Each(func(_ int, ev *goquery.Selection) {
			header := domain.EventHeader{
				ID:    -1,
				Title: strings.TrimSpace(ev.Text()),
				Day:   day.Day,
			}
			if onclick, ok := ev.Attr("onclick"); ok {
				if match := eventIDExpr.FindStringSubmatch(onclick); match != nil {
					if id, err := strconv.Atoi(match[1]); err == nil {
						header.ID = id
					}
				}
			}
			day.Events = append(day.Events, header)
		})

		if len(day.Events) > 0 {
			out = append(out, day)
		}
	})

	return out, nil
}

// Event fetches the event detail page for the description text.
func (c *Client) Event(ctx context.Context, id int) (domain.EventDetail, error) {
	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/terminarz/szczegoly/%d", id))
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("fetch event %d: %w", id, err)
	}

	var detail domain.EventDetail
	doc.Find("table.decorated tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if label == "Opis" {
			detail.Description = strings.TrimSpace(row.Find("td").First().Text())
		}
	})

	return detail, nil
}

func atoiOrZero(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
