// Package faunequebec knows the markup of the quebec.ca wildlife fact sheets:
// the search listing that enumerates them and the detail page of one species.
package faunequebec

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	BaseURL = "https://www.quebec.ca"

	// SearchURL lists threatened, vulnerable and candidate species in
	// alphabetical order. {page} is replaced by the 1-based page number.
	SearchURL = "https://www.quebec.ca/?id=23879&tx_solr[q]=*" +
		"&tx_solr[filter][]=species_status:Menac%C3%A9e" +
		"&tx_solr[filter][]=species_status:Susceptible%20d%E2%80%99%C3%AAtre%20d%C3%A9sign%C3%A9e%20comme%20menac%C3%A9e%20ou%20vuln%C3%A9rable" +
		"&tx_solr[filter][]=species_status:Vuln%C3%A9rable" +
		"&tx_solr[filter][]=species_status:Susceptible" +
		"&tx_solr[sort]=alphaAsc%20asc&tx_solr[page]={page}&type=7382"

	DetailPrefix = "/agriculture-environnement-et-ressources-naturelles/faune/animaux-sauvages-quebec/fiches-especes-fauniques"

	UserAgent = "SteakBléDindePatate/0.1 (Ce sondeur/collecteur est utilisé pour récupérer des données sur Québec.ca car le portail ne propose pas dapi accessible au public.)"
)

// Site holds the addresses a crawl runs against.
type Site struct {
	BaseURL      string `yaml:"baseURL"`
	SearchURL    string `yaml:"searchURL"`
	DetailPrefix string `yaml:"detailPrefix"`
}

func DefaultSite() Site {
	return Site{
		BaseURL:      BaseURL,
		SearchURL:    SearchURL,
		DetailPrefix: DetailPrefix,
	}
}

// PageURL is the listing address of page.
func (s Site) PageURL(page int) string {
	return strings.ReplaceAll(s.SearchURL, "{page}", strconv.Itoa(page))
}

// resolve makes href absolute against base. A href that cannot be parsed is
// glued to base as is.
func resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base + href
	}
	h, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(base, "/") + href
	}
	return b.ResolveReference(h).String()
}
