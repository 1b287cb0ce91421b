package librus

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlakM/czujka-librus/internal/domain"
)

// message ids live in listing links like /wiadomosci/1/6/12345/f0
var messageIDExpr = regexp.MustCompile(`/wiadomosci/\d+/\d+/(\d+)`)

// Inbox lists one folder of the message center. Folder 5 is the sent
// folder, used only to build the self-authorship exclusion set; folder 6
// is the received inbox that feeds the message pipeline.
func (c *Client) Inbox(ctx context.Context, folder int) ([]domain.MessageHeader, error) {
	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/wiadomosci/%d", folder))
	if err != nil {
		return nil, fmt.Errorf("fetch inbox folder %d: %w", folder, err)
	}

	var out []domain.MessageHeader
	doc.Find("table.decorated tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href*=\"/wiadomosci/\"]").First()
		href, _ := link.Attr("href")
		match := messageIDExpr.FindStringSubmatch(href)
		if match == nil {
			return
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			return
		}

		cells := row.Find("td")
		out = append(out, domain.MessageHeader{
			ID:     id,
			Sender: strings.TrimSpace(cells.Eq(1).Text()),
			Title:  strings.TrimSpace(link.Text()),
			Date:   strings.TrimSpace(cells.Eq(3).Text()),
		})
	})

	return out, nil
}

// Message fetches the full message page for the body and the complete
// sender name.
func (c *Client) Message(ctx context.Context, folder, id int) (domain.MessageDetail, error) {
	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/wiadomosci/1/%d/%d/f0", folder, id))
	if err != nil {
		return domain.MessageDetail{}, fmt.Errorf("fetch message %d: %w", id, err)
	}

	detail := domain.MessageDetail{
		Body: strings.TrimSpace(doc.Find(".container-message-content").First().Text()),
	}
	doc.Find("table.message-header tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if label == "Nadawca" {
			detail.Sender = strings.TrimSpace(row.Find("td").First().Text())
		}
	})

	return detail, nil
}
