package faunequebec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sim0n-says/AnalyseFauneQuebec/dom"
	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairs flattens fields in order so that cmp reports both key and order drift.
func pairs(f *spider.Fields) [][2]string {
	var out [][2]string
	for k, v := range f.All() {
		out = append(out, [2]string{k, v})
	}
	return out
}

func container(t *testing.T, markup, selector string) dom.Node {
	t.Helper()
	doc, err := dom.Parse([]byte(markup))
	require.NoError(t, err)
	n, ok := doc.First(selector)
	require.True(t, ok, "no %s in fixture", selector)
	return n
}

func TestExtractFields(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   [][2]string
	}{
		{
			name:   "scientific name",
			markup: `<div class="ficheBio-info"><p><strong>Nom scientifique:</strong> Rangifer tarandus</p></div>`,
			want:   [][2]string{{"Nom_scientifique", "Rangifer tarandus"}},
		},
		{
			name: "italic and link kept, other elements dropped",
			markup: `<div class="ficheBio-info"><p><strong>Famille :</strong> <i>Cervidae</i> <span>ignored</span></p>
				<p><strong>Statut</strong><a href="/statut">Menacée</a></p></div>`,
			want: [][2]string{{"Famille", "Cervidae"}, {"Statut", "Menacée"}},
		},
		{
			name:   "empty value",
			markup: `<div class="ficheBio-info"><p><strong>Taille:</strong></p></div>`,
			want:   [][2]string{{"Taille", "N/A"}},
		},
		{
			name:   "escaped value",
			markup: `<div class="ficheBio-info"><p><strong>Poids</strong> 100 &lt; x &amp; y</p></div>`,
			want:   [][2]string{{"Poids", "100 &lt; x &amp; y"}},
		},
		{
			name:   "paragraph without label",
			markup: `<div class="ficheBio-info"><p>Texte libre</p></div>`,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairs(ExtractFields(container(t, tt.markup, "div.ficheBio-info")))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractFields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractFieldsNil(t *testing.T) {
	assert.Equal(t, 0, ExtractFields(nil).Len())
}
