package faunequebec

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

var (
	pagerExpr = xpath.MustCompile(`//a[contains(concat(' ', normalize-space(@class), ' '), ' solr-ajaxified ')][@data-page]`)
	linkExpr  = xpath.MustCompile(`//a[contains(concat(' ', normalize-space(@class), ' '), ' espece-link ')][@href]`)
)

// TotalPages returns the highest numeric data-page of the pager links on a
// listing page, or 1 when there is none. Gaps in the numbering are ignored.
func TotalPages(body []byte) int {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return 1
	}
	total := 1
	for _, a := range htmlquery.QuerySelectorAll(doc, pagerExpr) {
		n, err := strconv.Atoi(strings.TrimSpace(htmlquery.SelectAttr(a, "data-page")))
		if err == nil && n > total {
			total = n
		}
	}
	return total
}

// DetailLinks returns the absolute fact-sheet addresses listed on one listing
// page, in page order. Links outside site.DetailPrefix are dropped.
func DetailLinks(body []byte, site Site) []string {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var links []string
	for _, a := range htmlquery.QuerySelectorAll(doc, linkExpr) {
		href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
		if !strings.HasPrefix(href, site.DetailPrefix) {
			continue
		}
		links = append(links, strings.TrimRight(site.BaseURL, "/")+href)
	}
	return links
}
