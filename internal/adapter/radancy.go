package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	radancyDefaultHost = "careers.amgen.com"
	radancyDefaultPath = "/en/search-jobs"
	radancyMaxPages    = 100
)

var (
	radancyJobIDRegex  = regexp.MustCompile(`/(\d+)(?:\?.*)?$`)
	radancyPostedRegex = regexp.MustCompile(`(?i)Posted:\s*</strong>\s*([^<]+)`)
	radancyDateRegex   = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.\s+\d{2},\s+\d{4}\b`)
)

// parseRadancySlug reads "host|path" or a bare host.
func parseRadancySlug(slug string) (host, searchPath string) {
	if strings.Contains(slug, "|") {
		fields := slugFields(slug, 2)
		return orDefault(bareHost(fields[0]), radancyDefaultHost), orDefault(fields[1], radancyDefaultPath)
	}
	return orDefault(bareHost(slug), radancyDefaultHost), radancyDefaultPath
}

// RadancyAdapter scrapes Radancy (TalentBrew) search result pages.
type RadancyAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewRadancyAdapter creates a new Radancy adapter.
func NewRadancyAdapter(client *http.Client, logger *slog.Logger) *RadancyAdapter {
	return &RadancyAdapter{client: client, logger: logger}
}

func (a *RadancyAdapter) Source() string { return "radancy" }

// FetchJobs reads the page count from the first results page, then walks
// ?p=2..N. Each job is an <li> card linking to /job/.
func (a *RadancyAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	host, searchPath := parseRadancySlug(slug)
	baseURL := "https://" + host
	firstURL := baseURL + searchPath

	maxPages := 1
	for page := 1; page <= maxPages; page++ {
		pageURL := firstURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s%sp=%d", firstURL, querySep(firstURL), page)
		}
		resp, err := getPage(ctx, a.client, pageURL, nil, expectHTML)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := htmlDocument(resp)
		if err != nil {
			return c.result(), c.stop(err)
		}

		if page == 1 {
			maxPages = radancyTotalPages(doc)
		}
		added := 0
		doc.Find("li").Each(func(_ int, li *goquery.Selection) {
			if job, ok := radancyCard(li, baseURL); ok && c.add(job) {
				added++
			}
		})
		if added == 0 {
			break
		}
	}
	return c.result(), nil
}

func radancyTotalPages(doc *goquery.Document) int {
	raw, ok := doc.Find("[data-total-pages]").First().Attr("data-total-pages")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, radancyMaxPages)
}

func radancyCard(li *goquery.Selection, baseURL string) (model.RawJob, bool) {
	link := li.Find(`a[href*="/job/"]`).First()
	if link.Length() == 0 {
		return model.RawJob{}, false
	}
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return model.RawJob{}, false
	}

	id := href
	if m := radancyJobIDRegex.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	title := strings.TrimSpace(li.Find("h2").First().Text())
	if title == "" {
		title = strings.TrimSpace(li.Find("h3").First().Text())
	}
	if title == "" {
		title = strings.Join(strings.Fields(link.Text()), " ")
	}
	if title == "" {
		title = "Untitled"
	}

	job := model.RawJob{
		ID:       id,
		Title:    title,
		Location: strings.TrimSpace(li.Find(".job-location").First().Text()),
		ApplyURL: absoluteURL(baseURL, href),
	}

	markup, _ := goquery.OuterHtml(li)
	if m := radancyPostedRegex.FindStringSubmatch(markup); m != nil {
		job.PostedAt = strings.TrimSpace(m[1])
	} else if d := radancyDateRegex.FindString(li.Text()); d != "" {
		job.PostedAt = d
	}
	return job, true
}

func querySep(u string) string {
	if strings.Contains(u, "?") {
		return "&"
	}
	return "?"
}

func htmlDocument(r *response) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.body))
	if err != nil {
		return nil, &model.PageError{URL: r.url, ContentType: r.contentType, Err: err}
	}
	return doc, nil
}
