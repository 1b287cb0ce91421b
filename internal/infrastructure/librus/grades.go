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

var gradeIDExpr = regexp.MustCompile(`/przegladaj_oceny/szczegoly/(\d+)`)

// Grades scrapes the grade overview. One row per subject; semester cells
// hold grade links whose tooltip carries the teacher's comment.
func (c *Client) Grades(ctx context.Context) ([]domain.SubjectGrades, error) {
	doc, err := c.fetchDocument(ctx, "/przegladaj_oceny/uczen")
	if err != nil {
		return nil, fmt.Errorf("fetch grades: %w", err)
	}

	var out []domain.SubjectGrades
	doc.Find("table.decorated.stretch tbody tr.line0, table.decorated.stretch tbody tr.line1").Each(func(_ int, row *goquery.Selection) {
		subject := domain.SubjectGrades{
			Name: strings.TrimSpace(row.Find("td.subject").First().Text()),
		}
		if raw, ok := row.Attr("data-subject-id"); ok {
			if id, err := strconv.Atoi(raw); err == nil {
				subject.ID = id
			}
		}

		row.Find("td.semester").Each(func(i int, cell *goquery.Selection) {
			semester := domain.Semester{Number: i + 1}
			cell.Find("a.ocena").Each(func(_ int, grade *goquery.Selection) {
				href, _ := grade.Attr("href")
				match := gradeIDExpr.FindStringSubmatch(href)
				if match == nil {
					return
				}
				id, err := strconv.Atoi(match[1])
				if err != nil {
					return
				}
				info, _ := grade.Attr("title")
				semester.Grades = append(semester.Grades, domain.GradeEntry{
					ID:    id,
					Value: strings.TrimSpace(grade.Text()),
					Info:  strings.TrimSpace(info),
				})
			})
			if len(semester.Grades) > 0 {
				subject.Semesters = append(subject.Semesters, semester)
			}
		})

		if subject.Name != "" {
			out = append(out, subject)
		}
	})

	return out, nil
}
