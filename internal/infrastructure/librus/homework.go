package librus

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlakM/czujka-librus/internal/domain"
)

var homeworkIDExpr = regexp.MustCompile(`/moje_zadania/podglad/(\d+)`)

// HomeworkSubjects reads the subject selector of the homework page. The
// portal keeps a value-0 "all subjects" placeholder in the list; the
// pipeline skips it.
func (c *Client) HomeworkSubjects(ctx context.Context) ([]domain.Subject, error) {
	doc, err := c.fetchDocument(ctx, "/moje_zadania")
	if err != nil {
		return nil, fmt.Errorf("fetch homework subjects: %w", err)
	}

	var out []domain.Subject
	doc.Find("select[name=\"przedmiot\"] option").Each(func(_ int, opt *goquery.Selection) {
		raw, _ := opt.Attr("value")
		id, err := strconv.Atoi(raw)
		if err != nil {
			return
		}
		out = append(out, domain.Subject{
			ID:   id,
			Name: strings.TrimSpace(opt.Text()),
		})
	})

	return out, nil
}

// Homework posts the per-subject assignment filter for the given window.
func (c *Client) Homework(ctx context.Context, subjectID int, from, to time.Time) ([]domain.HomeworkHeader, error) {
	form := url.Values{}
	form.Set("przedmiot", strconv.Itoa(subjectID))
	form.Set("dataOd", from.Format("2006-01-02"))
	form.Set("dataDo", to.Format("2006-01-02"))

	doc, err := c.postForm(ctx, "/moje_zadania", form)
	if err != nil {
		return nil, fmt.Errorf("fetch homework for subject %d: %w", subjectID, err)
	}

	var out []domain.HomeworkHeader
	doc.Find("table.decorated tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href*=\"/moje_zadania/podglad/\"]").First()
		href, _ := link.Attr("href")
		match := homeworkIDExpr.FindStringSubmatch(href)
		if match == nil {
			return
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			return
		}

		cells := row.Find("td")
		out = append(out, domain.HomeworkHeader{
			ID:       id,
			Subject:  strings.TrimSpace(cells.Eq(0).Text()),
			Teacher:  strings.TrimSpace(cells.Eq(1).Text()),
			Title:    strings.TrimSpace(cells.Eq(2).Text()),
			Kind:     strings.TrimSpace(cells.Eq(3).Text()),
			DateFrom: strings.TrimSpace(cells.Eq(4).Text()),
			DateTo:   strings.TrimSpace(cells.Eq(5).Text()),
		})
	})

	return out, nil
}

// HomeworkDetail fetches the assignment page for the full content.
func (c *Client) HomeworkDetail(ctx context.Context, id int) (domain.HomeworkDetail, error) {
	doc, err := c.fetchDocument(ctx, fmt.Sprintf("/moje_zadania/podglad/%d", id))
	if err != nil {
		return domain.HomeworkDetail{}, fmt.Errorf("fetch homework %d: %w", id, err)
	}

	var detail domain.HomeworkDetail
	doc.Find("table.decorated tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		switch label {
		case "Treść":
			detail.Content = value
		case "Nauczyciel":
			detail.Teacher = value
		}
	})

	return detail, nil
}
