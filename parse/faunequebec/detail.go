package faunequebec

import (
	"fmt"
	"strings"

	"github.com/sim0n-says/AnalyseFauneQuebec/dom"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
)

const (
	principalTitleSel = "h1#titre-principal.themeTitre"
	descriptionSel    = "div.field--name-field-description"
	bioInfoSel        = "div.ficheBio-info"
	contentSel        = "div.col-12.content-elements"
	mapImageSel       = "figure.image img.image-embed-item[src]"
	accordionSel      = "div.accordion-content"
	referencesLabel   = "références"
)

/*
ParseDetail builds the record of one species fact sheet.

Nothing on the page is mandatory: a missing part falls back to NA (title,
description) or to the empty string (image, references). Labeled bio-info
paragraphs are read first and the content frames are merged on top, so a frame
heading wins over a bio-info label with the same key. The only error is a body
that cannot be parsed as HTML.
*/
func ParseDetail(body []byte, sourceURL string) (*spider.Record, error) {
	doc, err := dom.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse detail %s: %w", sourceURL, err)
	}

	rec := &spider.Record{
		Title:       spider.NA,
		Description: spider.NA,
		Fields:      spider.NewFields(),
		SourceURL:   sourceURL,
	}
	if h1, ok := doc.First("h1"); ok && h1.Text() != "" {
		rec.Title = h1.Text()
	}
	rec.Slug = slugOf(doc, rec.Title)
	if d, ok := doc.First(descriptionSel); ok && d.Text() != "" {
		rec.Description = d.Text()
	}

	for _, info := range doc.Find(bioInfoSel) {
		rec.Fields.Merge(ExtractFields(info))
	}
	if content, ok := doc.First(contentSel); ok {
		rec.Fields.Merge(ExtractSections(content))
	}

	if img, ok := doc.First(mapImageSel); ok {
		src, _ := img.Attr("src")
		if src = strings.TrimSpace(src); src != "" {
			rec.ImageURL = resolve(sourceURL, src)
		}
	}
	rec.References = references(doc)

	return rec, nil
}

func slugOf(doc dom.Node, title string) string {
	if h, ok := doc.First(principalTitleSel); ok {
		return Slug(h.Text())
	}
	if title != spider.NA {
		return Slug(title)
	}
	return spider.DefaultSlug
}

// references returns the bibliography text, or "" when the page has none.
// The accordion panel enclosing the "Références" link is the source; only when
// the link sits outside any panel is the element it targets, by aria-controls
// or #fragment, used instead.
func references(doc dom.Node) string {
	var link dom.Node
	for _, a := range doc.Find("a") {
		if strings.Contains(strings.ToLower(a.Text()), referencesLabel) {
			link = a
			break
		}
	}
	if link == nil {
		return ""
	}
	if panel, ok := link.Closest(accordionSel); ok {
		return panel.Text()
	}

	target, _ := link.Attr("aria-controls")
	if target == "" {
		href, _ := link.Attr("href")
		if i := strings.IndexByte(href, '#'); i >= 0 {
			target = href[i+1:]
		}
	}
	if target == "" {
		return ""
	}
	for _, n := range doc.Find("[id]") {
		if id, _ := n.Attr("id"); id == target {
			return n.Text()
		}
	}
	return ""
}
