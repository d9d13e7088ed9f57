package faunequebec

import (
	"strings"

	"github.com/sim0n-says/AnalyseFauneQuebec/dom"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
)

// ExtractSections reads the div.frame blocks of region. See sectionsOf for how
// one frame maps to fields.
func ExtractSections(region dom.Node) *spider.Fields {
	fields := spider.NewFields()
	if region == nil {
		return fields
	}
	for _, frame := range region.Find("div.frame") {
		fields.Merge(sectionsOf(frame))
	}
	return fields
}

/*
sectionsOf turns one frame into fields.

Paragraphs and lists before the first h3 belong to the frame heading (h2). Each
h3 opens a sub-section that runs until the next h3. The frame entry is written
first so that a sub-section with the same key replaces it. A frame with neither
leading content nor sub-sections still yields its heading with NA.
*/
func sectionsOf(frame dom.Node) *spider.Fields {
	fields := spider.NewFields()
	h2, ok := frame.First("h2")
	if !ok {
		return fields
	}
	frameKey := CleanKey(h2.Text())

	type section struct {
		key   string
		parts []string
	}
	var (
		lead []string
		subs []*section
	)
	for _, n := range frame.Find("h3, p, ul") {
		if n.Tag() == "h3" {
			subs = append(subs, &section{key: CleanKey(n.Text())})
			continue
		}
		if nestedBlock(n, frame) {
			continue
		}
		text := blockText(n)
		if text == "" {
			continue
		}
		if len(subs) == 0 {
			lead = append(lead, text)
		} else {
			cur := subs[len(subs)-1]
			cur.parts = append(cur.parts, text)
		}
	}

	if frameKey != "" && (len(lead) > 0 || len(subs) == 0) {
		fields.Set(frameKey, fieldValue(strings.Join(lead, " ")))
	}
	for _, s := range subs {
		if s.key == "" {
			continue
		}
		fields.Set(s.key, fieldValue(strings.Join(s.parts, " ")))
	}
	return fields
}

// blockText is the text of a paragraph, or the item texts of a list.
func blockText(n dom.Node) string {
	if n.Tag() != "ul" {
		return n.Text()
	}
	var items []string
	for _, li := range n.Contents() {
		if li.Tag() != "li" {
			continue
		}
		if t := li.Text(); t != "" {
			items = append(items, t)
		}
	}
	return strings.Join(items, " ")
}

// nestedBlock reports whether n sits inside another p or ul of frame; the
// outer block already carries its text.
func nestedBlock(n, frame dom.Node) bool {
	for p, ok := n.Parent(); ok && !p.Same(frame); p, ok = p.Parent() {
		if t := p.Tag(); t == "p" || t == "ul" {
			return true
		}
	}
	return false
}
