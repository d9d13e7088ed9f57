package faunequebec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanKey(t *testing.T) {
	type args struct {
		label string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{name: "colon", args: args{label: "Nom scientifique:"}, want: "Nom_scientifique"},
		{name: "spaced colon", args: args{label: " Grand groupe : "}, want: "Grand_groupe"},
		{name: "accents", args: args{label: "Espèce à statut"}, want: "Espèce_à_statut"},
		{name: "apostrophe", args: args{label: "Menaces pour l'espèce"}, want: "Menaces_pour_l_espèce"},
		{name: "inner underscores kept", args: args{label: "a__b"}, want: "a__b"},
		{name: "superscript", args: args{label: "Domaine vital (km²)"}, want: "Domaine_vital_km"},
		{name: "digits kept", args: args{label: "Taille 2e année"}, want: "Taille_2e_année"},
		{name: "punctuation only", args: args{label: "::"}, want: "_"},
		{name: "empty", args: args{label: ""}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanKey(tt.args.label)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanKey(got), "not idempotent")
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "Caribou_des_bois_écotype_montagnard", Slug("Caribou des bois, écotype montagnard"))
	assert.Equal(t, "output", Slug(""))
	assert.Equal(t, "output", Slug("?!"))

	for _, title := range []string{"Tortue des bois", " Rainette faux-grillon ", "output", "--"} {
		s := Slug(title)
		assert.NotEmpty(t, s)
		assert.Equal(t, s, Slug(s))
	}
}

func TestFieldValue(t *testing.T) {
	assert.Equal(t, "N/A", fieldValue("   "))
	assert.Equal(t, "a &amp; b &lt;c&gt;", fieldValue(" a & b <c> "))
	assert.Equal(t, "l&#x27;espèce &quot;rare&quot;", fieldValue(`l'espèce "rare"`))
}
