package synth

import (
	"strings"
	"text/template"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"golang.org/x/net/html"
)

// PromptKeys are the bio-info fields a summary is built from.
var PromptKeys = []string{
	"Nom_français",
	"Nom_scientifique",
	"Grand_groupe",
	"Sous_groupe",
	"Espèces_similaires",
	"Distinction",
	"Description",
	"Habitat",
	"Répartition",
	"Identification",
	"Taille",
	"Poids",
	"Coloration",
	"Traits_caractéristiques",
	"Alimentation",
	"Reproduction",
	"Espèce_à_statut",
	"Menaces_pour_l_espèce",
}

var promptTmpl = template.Must(template.New("prompt").Parse(`Synthétise les informations suivantes sous forme de texte très concis pour les rendre factuelles, concises et compréhensibles pour un enfant de 10 ans.
Veuillez toujours renvoyer les informations dans cet ordre :

**Nom français** : {{index . "Nom_français"}}

**Nom scientifique** : {{index . "Nom_scientifique"}}

**Grand groupe** : {{index . "Grand_groupe"}}

**Sous-groupe** : {{index . "Sous_groupe"}}

**Espèces similaires** : {{index . "Espèces_similaires"}}

**Distinction** : {{index . "Distinction"}}

**Description** : {{index . "Description"}}

**Habitat** : {{index . "Habitat"}}

**Répartition** : {{index . "Répartition"}}

**Identification** : {{index . "Identification"}}

**Taille** : {{index . "Taille"}}

**Poids** : {{index . "Poids"}}

**Coloration** : {{index . "Coloration"}}

**Traits caractéristiques** : {{index . "Traits_caractéristiques"}}

**Alimentation** : {{index . "Alimentation"}}

**Reproduction** : {{index . "Reproduction"}}

**Statut de l'espèce** : {{index . "Espèce_à_statut"}}

**Menaces pour l'espèce** : {{index . "Menaces_pour_l_espèce"}}
`))

// Info collects the prompt fields of rec as plain text. Absent fields are
// empty strings.
func Info(rec *spider.Record) map[string]string {
	info := make(map[string]string, len(PromptKeys))
	for _, k := range PromptKeys {
		v, _ := rec.Fields.Get(k)
		info[k] = html.UnescapeString(v)
	}
	return info
}

// BuildPrompt renders the summary request for rec.
func BuildPrompt(rec *spider.Record) (string, error) {
	var b strings.Builder
	if err := promptTmpl.Execute(&b, Info(rec)); err != nil {
		return "", err
	}
	return b.String(), nil
}
