package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="frame main" id="f1">
  <h2>Habitat</h2>
  <p>Forêt <i>boréale</i><!-- note -->&nbsp; humide</p>
  <ul><li>Un</li><li>Deux</li></ul>
</div>
</body></html>`

func TestNode(t *testing.T) {
	doc, err := Parse([]byte(page))
	require.NoError(t, err)

	frame, ok := doc.First("div.frame")
	require.True(t, ok)
	assert.Equal(t, "div", frame.Tag())
	assert.True(t, frame.HasClass("main"))
	assert.True(t, frame.Is("#f1"))
	id, ok := frame.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "f1", id)

	p, ok := frame.First("p")
	require.True(t, ok)
	assert.Equal(t, "Forêt boréale humide", p.Text())

	contents := p.Contents()
	require.Len(t, contents, 3, "comment must be skipped")
	assert.True(t, contents[0].IsText())
	assert.Equal(t, "i", contents[1].Tag())

	i := contents[1]
	sib := i.NextSiblings()
	require.Len(t, sib, 1)
	assert.Equal(t, "humide", sib[0].Text())

	parent, ok := i.Parent()
	require.True(t, ok)
	assert.True(t, parent.Same(p))

	closest, ok := i.Closest("div.frame")
	require.True(t, ok)
	assert.True(t, closest.Same(frame))

	all := frame.Find("h2, p, ul")
	require.Len(t, all, 3)
	assert.Equal(t, []string{"h2", "p", "ul"}, []string{all[0].Tag(), all[1].Tag(), all[2].Tag()})
}

func TestInvalidSelectorMatchesNothing(t *testing.T) {
	doc, err := Parse([]byte(page))
	require.NoError(t, err)
	assert.Empty(t, doc.Find("div[[["))
	_, ok := doc.First("div[[[")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize(" a\n\t b  c "))
}
