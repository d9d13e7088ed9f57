/*
Package synth is the second stage of the pipeline. It reads the extracted
fact sheets back, asks a language model for a short summary of each one and
writes the summaries to their own document.
*/
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sim0n-says/AnalyseFauneQuebec/spider"
	"github.com/sim0n-says/AnalyseFauneQuebec/storage/xmlstorage"
	"go.uber.org/zap"
)

// Load reads the records of an extraction document.
func Load(path string) ([]*spider.Record, error) {
	return xmlstorage.Load(path)
}

type Stats struct {
	Summarized int
	Skipped    int
}

type Synthesizer struct {
	summarizer Summarizer
	store      *Store
	logger     *zap.Logger
	stats      Stats
}

func New(summarizer Summarizer, store *Store, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{summarizer: summarizer, store: store, logger: logger}
}

/*
Run summarizes recs one after the other.

A failed call or an empty answer skips the species. Every summary is saved as
soon as it is added, so an interrupted run keeps what it paid for. Only a save
failure or a cancelled ctx stops Run early.
*/
func (s *Synthesizer) Run(ctx context.Context, recs []*spider.Record) error {
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		info := Info(rec)
		name := info["Nom_français"]
		prompt, err := BuildPrompt(rec)
		if err != nil {
			return fmt.Errorf("prompt for %s: %w", rec.Slug, err)
		}

		answer, err := s.summarizer.Summarize(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.stats.Skipped++
			s.logger.Error("summary failed", zap.String("species", name), zap.Error(err))
			continue
		}
		if strings.TrimSpace(answer) == "" {
			s.stats.Skipped++
			s.logger.Warn("empty summary", zap.String("species", name))
			continue
		}

		s.store.Append(Species{
			NomFrancais: name,
			GrandGroupe: info["Grand_groupe"],
			SousGroupe:  info["Sous_groupe"],
			Statut:      info["Espèce_à_statut"],
			Synthese:    answer,
		})
		if err := s.store.Save(); err != nil {
			return err
		}
		s.stats.Summarized++
		s.logger.Info("species summarized", zap.String("species", name))
	}
	return nil
}

func (s *Synthesizer) Stats() Stats {
	return s.stats
}
