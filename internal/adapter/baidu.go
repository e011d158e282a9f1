package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	baiduSearchURL          = "https://talent.baidu.com/httservice/getPostListNew"
	baiduDefaultRecruitType = "SOCIAL"
	baiduDefaultPageSize    = 50
	baiduDefaultMaxPages    = 30
	baiduUserAgent          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
)

var (
	baiduStatus  = paths("/status")
	baiduList    = paths("/data/list", "/list")
	baiduTotal   = paths("/data/total", "/total")
	baiduPostID  = paths("/postId")
	baiduContent = paths("/workContent")
	baiduTerms   = paths("/serviceCondition")
	baiduFields  = fieldTable{
		ID:             paths("/postId", "/jobId", "/name"),
		Title:          paths("/name"),
		Location:       paths("/workPlace"),
		PostedAt:       paths("/publishDate", "/updateDate"),
		EmploymentType: paths("/postType"),
	}
)

type baiduBoard struct {
	recruitType string
	pageSize    int
	maxPages    int
}

// parseBaiduSlug reads "recruitType|pageSize|maxPages".
func parseBaiduSlug(slug string) baiduBoard {
	parts := slugParts(slug)
	return baiduBoard{
		recruitType: orDefault(at(parts, 0), baiduDefaultRecruitType),
		pageSize:    positiveInt(at(parts, 1), baiduDefaultPageSize),
		maxPages:    positiveInt(at(parts, 2), baiduDefaultMaxPages),
	}
}

// BaiduAdapter pages through Baidu's talent site search.
type BaiduAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewBaiduAdapter creates a new Baidu adapter.
func NewBaiduAdapter(client *http.Client, logger *slog.Logger) *BaiduAdapter {
	return &BaiduAdapter{client: client, logger: logger}
}

func (a *BaiduAdapter) Source() string { return "baidu" }

// FetchJobs posts the search form page by page. The endpoint does not label
// its JSON reliably, so any content type is parsed and the payload's own
// status field is checked instead.
func (a *BaiduAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	board := parseBaiduSlug(slug)

	header := http.Header{}
	header.Set("Referer", "https://talent.baidu.com/")
	header.Set("X-Requested-With", "XMLHttpRequest")
	header.Set("User-Agent", baiduUserAgent)

	total := 0
	for page := 1; page <= board.maxPages; page++ {
		form := url.Values{}
		form.Set("recruitType", board.recruitType)
		form.Set("pageSize", fmt.Sprint(board.pageSize))
		form.Set("keyWord", "")
		form.Set("curPage", fmt.Sprint(page))
		form.Set("projectType", "")

		resp, err := postForm(ctx, a.client, baiduSearchURL, header, form, expectAny)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}
		if baiduStatus.str(doc) != "ok" {
			break
		}

		if n, ok := baiduTotal.number(doc); ok && n > 0 {
			total = n
		}
		added := 0
		for _, item := range baiduList.list(doc) {
			job := baiduFields.rawJob(item)
			job.Description = baiduDescription(item)
			job.ApplyURL = fmt.Sprintf("https://talent.baidu.com/jobs/detail/%s/%s", board.recruitType, baiduPostID.str(item))
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if total > 0 && page*board.pageSize >= total {
			break
		}
	}
	return c.result(), nil
}

func baiduDescription(item any) string {
	var pieces []string
	for _, s := range []string{baiduContent.str(item), baiduTerms.str(item)} {
		if s != "" {
			pieces = append(pieces, s)
		}
	}
	return strings.Join(pieces, "\n")
}
