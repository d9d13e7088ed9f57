package synth

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sim0n-says/AnalyseFauneQuebec/storage"
	"go.uber.org/zap"
)

// Species is one summarized entry of the output document.
type Species struct {
	NomFrancais string `xml:"Nom_français"`
	GrandGroupe string `xml:"Grand_groupe"`
	SousGroupe  string `xml:"Sous_groupe"`
	Statut      string `xml:"Espèce_à_statut"`
	Synthese    string `xml:"Description_synthétisée"`
}

type document struct {
	XMLName xml.Name  `xml:"faune_synthétisée"`
	Species []Species `xml:"espece"`
}

// Store accumulates summaries and rewrites its document on every Save.
type Store struct {
	mu      sync.Mutex
	path    string
	species []Species
	logger  *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Append(sp Species) {
	s.mu.Lock()
	s.species = append(s.species, sp)
	s.mu.Unlock()
}

func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := encode(&buf, s.species); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := storage.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	s.logger.Debug("summaries saved", zap.String("path", s.path), zap.Int("species", len(s.species)))
	return nil
}

func (s *Store) Species() []Species {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Species(nil), s.species...)
}

func encode(w io.Writer, species []Species) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(document{Species: species}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// LoadSpecies reads a summary document back.
func LoadSpecies(path string) ([]Species, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc.Species, nil
}
