// Package similarity ranks reference photographers by stylistic closeness to
// a set of user images, using embedding vectors and cosine similarity.
package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/framecheck/framecheck/pkg/client"
	"github.com/framecheck/framecheck/pkg/types"
)

// descriptions of the reference photographers in the bundled embedding set.
var photographerDescriptions = map[string]string{
	"alex_webb":             "Street photographer known for complex, layered compositions with vibrant colors and cultural juxtapositions.",
	"andreas_gursky":        "Contemporary photographer famous for large-scale, digitally manipulated images of modern landscapes and architecture.",
	"ansel_adams":           "Legendary landscape photographer known for dramatic black and white images of the American West.",
	"dorothea_langa":        "Documentary photographer who captured the human condition during the Great Depression.",
	"georgy_crewdson":       "Fine art photographer known for cinematic, staged scenes that explore suburban life and American culture.",
	"henri_cartier_bresson": "Pioneer of street photography and master of the \"decisive moment\" in candid photography.",
	"joel_meyerowitz":       "Street and landscape photographer known for his use of color and large format photography.",
	"maria_svarbova":        "Contemporary photographer known for minimalist, geometric compositions with pastel colors.",
	"pieter_hugo":           "South African photographer known for powerful portraits that explore social and political themes.",
	"yousuf_karsh":          "Portrait photographer who captured iconic images of 20th century figures and celebrities.",
}

const defaultDescription = "Professional photographer with a distinctive visual style."

// Finder matches user images against a library of per-photographer style
// embeddings loaded from a JSON file.
type Finder struct {
	client     client.LanguageClient
	model      string
	embeddings map[string][][]float64
}

// NewFinder loads the embedding library from embeddingsFile and returns a
// Finder that embeds user inputs with the given client and model. A missing
// or unreadable file is an error; the caller decides whether similarity is
// optional.
func NewFinder(c client.LanguageClient, model, embeddingsFile string) (*Finder, error) {
	data, err := os.ReadFile(embeddingsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings file: %w", err)
	}

	var embeddings map[string][][]float64
	if err := json.Unmarshal(data, &embeddings); err != nil {
		return nil, fmt.Errorf("failed to parse embeddings file: %w", err)
	}

	return &Finder{client: c, model: model, embeddings: embeddings}, nil
}

// NewFinderWithEmbeddings creates a Finder over an in-memory library.
func NewFinderWithEmbeddings(c client.LanguageClient, model string, embeddings map[string][][]float64) *Finder {
	return &Finder{client: c, model: model, embeddings: embeddings}
}

// Photographers returns the number of photographers in the library.
func (f *Finder) Photographers() int {
	return len(f.embeddings)
}

// Embed produces an embedding vector for one user input via the model
// backend.
func (f *Finder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.client.Embed(ctx, f.model, text)
}

// EmbedAll embeds multiple user inputs, collecting per-input errors instead
// of failing the batch.
func (f *Finder) EmbedAll(ctx context.Context, texts []string) ([][]float64, []string) {
	var embeddings [][]float64
	var errs []string
	for i, text := range texts {
		emb, err := f.Embed(ctx, text)
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to process input %d: %v", i+1, err))
			continue
		}
		embeddings = append(embeddings, emb)
	}
	return embeddings, errs
}

// FindSimilar ranks photographers by the average cosine similarity between
// every user embedding and every library embedding of that photographer, and
// returns the top k matches. Empty inputs or an empty library yield nil.
func (f *Finder) FindSimilar(userEmbeddings [][]float64, topK int) []types.PhotographerMatch {
	if len(userEmbeddings) == 0 || len(f.embeddings) == 0 {
		return nil
	}

	matches := make([]types.PhotographerMatch, 0, len(f.embeddings))
	for name, library := range f.embeddings {
		total := 0.0
		comparisons := 0
		for _, userEmb := range userEmbeddings {
			for _, refEmb := range library {
				sim, ok := CosineSimilarity(userEmb, refEmb)
				if !ok {
					continue
				}
				total += sim
				comparisons++
			}
		}
		if comparisons == 0 {
			continue
		}

		matches = append(matches, types.PhotographerMatch{
			Name:            name,
			DisplayName:     displayName(name),
			Description:     description(name),
			SimilarityScore: total / float64(comparisons),
			SampleSize:      len(library),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// CosineSimilarity returns the cosine of the angle between two vectors. The
// second return is false for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return floats.Dot(a, b) / (normA * normB), true
}

func displayName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func description(name string) string {
	if d, ok := photographerDescriptions[name]; ok {
		return d
	}
	return defaultDescription
}
