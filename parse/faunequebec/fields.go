package faunequebec

import (
	"strings"

	"github.com/sim0n-says/AnalyseFauneQuebec/dom"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
)

/*
ExtractFields reads the labeled paragraphs of container.

A paragraph counts when it holds a strong label. The label text gives the key;
the value is built from what follows the label inside the paragraph: text nodes
and the text of i and a elements, each trimmed and joined without a separator.
Anything else after the label is ignored.
*/
func ExtractFields(container dom.Node) *spider.Fields {
	fields := spider.NewFields()
	if container == nil {
		return fields
	}
	for _, p := range container.Find("p") {
		label, ok := p.First("strong")
		if !ok {
			continue
		}
		key := CleanKey(label.Text())
		if key == "" {
			continue
		}
		fields.Set(key, fieldValue(labelValue(label)))
	}
	return fields
}

func labelValue(label dom.Node) string {
	var b strings.Builder
	for _, n := range label.NextSiblings() {
		switch {
		case n.IsText():
			b.WriteString(strings.TrimSpace(n.Text()))
		case n.Tag() == "i", n.Tag() == "a":
			b.WriteString(n.Text())
		}
	}
	return b.String()
}
