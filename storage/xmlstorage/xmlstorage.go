// Package xmlstorage keeps crawled records in memory and writes them out as
// one indented XML document.
package xmlstorage

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const DefaultRoot = "faune"

var ErrNoPath = errors.New("xmlstorage: no output path")

// XMLStore is safe for concurrent use. Save may run from a signal handler
// while the crawl loop is still appending.
type XMLStore struct {
	mu      sync.Mutex
	records []*spider.Record
	options
}

func New(opts ...Option) (*XMLStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.path == "" {
		return nil, ErrNoPath
	}
	return &XMLStore{options: options}, nil
}

// Append adds rec after every record already held. Duplicates are kept.
func (s *XMLStore) Append(rec *spider.Record) error {
	if rec == nil {
		return errors.New("xmlstorage: nil record")
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

/*
Save writes every record held so far to the configured path, replacing the
previous document in one rename. Saving twice without an Append in between
produces identical files.
*/
func (s *XMLStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := Encode(&buf, s.root, s.records); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := storage.WriteFile(s.path, buf.Bytes(), s.perm); err != nil {
		return err
	}
	s.logger.Info("document saved", zap.String("path", s.path), zap.Int("records", len(s.records)))
	return nil
}

func (s *XMLStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a snapshot of the held records in append order.
func (s *XMLStore) Records() []*spider.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*spider.Record(nil), s.records...)
}

// TagName makes key usable as an element name: runes that XML does not allow
// in a name become underscores, and a key that does not start with a letter
// or an underscore gets an underscore prefix.
func TagName(key string) string {
	key = strings.Map(func(r rune) rune {
		if nameRune(r) {
			return r
		}
		return '_'
	}, key)
	r, _ := utf8.DecodeRuneInString(key)
	if key == "" || !(unicode.IsLetter(r) || r == '_') {
		return "_" + key
	}
	return key
}

func nameRune(r rune) bool {
	switch r {
	case '_', '-', '.', '\u00b7':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc)
}

// Encode writes recs as a complete document under root, two-space indented.
func Encode(w io.Writer, root string, recs []*spider.Record) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	rootEl := xml.StartElement{Name: xml.Name{Local: root}}
	if err := enc.EncodeToken(rootEl); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := encodeRecord(enc, rec); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(rootEl.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeRecord(enc *xml.Encoder, rec *spider.Record) error {
	entry := xml.StartElement{
		Name: xml.Name{Local: "Nom_francais"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: rec.Slug}},
	}
	bio := xml.StartElement{Name: xml.Name{Local: "ficheBioInfo"}}

	if err := enc.EncodeToken(entry); err != nil {
		return err
	}
	if err := textElement(enc, "title", spider.EscapeHTML(rec.Title)); err != nil {
		return err
	}
	if err := textElement(enc, "description", spider.EscapeHTML(rec.Description)); err != nil {
		return err
	}
	if err := enc.EncodeToken(bio); err != nil {
		return err
	}
	for k, v := range rec.Fields.All() {
		if err := textElement(enc, TagName(k), v); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(bio.End()); err != nil {
		return err
	}
	if rec.ImageURL != "" {
		if err := textElement(enc, "image_url", rec.ImageURL); err != nil {
			return err
		}
	}
	if rec.References != "" {
		if err := textElement(enc, "references", rec.References); err != nil {
			return err
		}
	}
	if err := textElement(enc, "fiche_url", rec.SourceURL); err != nil {
		return err
	}
	return enc.EncodeToken(entry.End())
}

func textElement(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

type document struct {
	XMLName xml.Name
	Entries []entry `xml:"Nom_francais"`
}

type entry struct {
	Name        string `xml:"name,attr"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Bio         struct {
		Fields []field `xml:",any"`
	} `xml:"ficheBioInfo"`
	ImageURL   string `xml:"image_url"`
	References string `xml:"references"`
	FicheURL   string `xml:"fiche_url"`
}

type field struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Decode reads a document written by Encode. Field values stay escaped, as
// they are in a freshly parsed record.
func Decode(r io.Reader) (root string, recs []*spider.Record, err error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, err
	}
	for _, e := range doc.Entries {
		rec := &spider.Record{
			Slug:        e.Name,
			Title:       html.UnescapeString(e.Title),
			Description: html.UnescapeString(e.Description),
			Fields:      spider.NewFields(),
			ImageURL:    e.ImageURL,
			References:  e.References,
			SourceURL:   e.FicheURL,
		}
		for _, f := range e.Bio.Fields {
			rec.Fields.Set(f.XMLName.Local, f.Value)
		}
		recs = append(recs, rec)
	}
	return doc.XMLName.Local, recs, nil
}

// Load decodes the document at path.
func Load(path string) ([]*spider.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	_, recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return recs, nil
}
