package faunequebec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractSections(t *testing.T) {
	tests := []struct {
		name   string
		frames string
		want   [][2]string
	}{
		{
			name:   "sub-section only",
			frames: `<div class="frame"><h2>Habitat</h2><h3>Été</h3><p>Forêt boréale</p></div>`,
			want:   [][2]string{{"Été", "Forêt boréale"}},
		},
		{
			name: "whole frame with list",
			frames: `<div class="frame"><h2>Description</h2><p>Grand cervidé.</p>
				<ul><li>Bois</li><li>Sabots larges</li></ul></div>`,
			want: [][2]string{{"Description", "Grand cervidé. Bois Sabots larges"}},
		},
		{
			name:   "empty frame",
			frames: `<div class="frame"><h2>Menaces</h2></div>`,
			want:   [][2]string{{"Menaces", "N/A"}},
		},
		{
			name: "sub-sections stop at the next heading",
			frames: `<div class="frame"><h2>Biologie</h2><p>Intro</p>
				<h3>Alimentation</h3><p>Lichens</p>
				<h3>Reproduction</h3><p>Un petit</p><p>au printemps</p>
				<h3>Longévité</h3></div>`,
			want: [][2]string{
				{"Biologie", "Intro"},
				{"Alimentation", "Lichens"},
				{"Reproduction", "Un petit au printemps"},
				{"Longévité", "N/A"},
			},
		},
		{
			name: "sub-section overwrites frame entry",
			frames: `<div class="frame"><h2>Répartition</h2><p>Québec</p>
				<h3>Répartition</h3><p>Gaspésie</p></div>`,
			want: [][2]string{{"Répartition", "Gaspésie"}},
		},
		{
			name: "frames without heading are skipped",
			frames: `<div class="frame"><p>orphan</p></div>
				<div class="frame"><h2>Taille</h2><div><p>2 m</p></div></div>`,
			want: [][2]string{{"Taille", "2 m"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := container(t, `<div class="col-12 content-elements">`+tt.frames+`</div>`, "div.content-elements")
			got := pairs(ExtractSections(region))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractSections() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
