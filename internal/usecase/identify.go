package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

const identifyPrompt = `You are an expert wildlife biologist. Analyze this image and identify the animal species.

Respond with ONLY a JSON object in this exact format (no other text):
{"commonName": "Peregrine Falcon", "scientificName": "Falco peregrinus"}

If the image does not contain an animal or you cannot identify it, respond with:
{"commonName": null, "scientificName": null}`

const imageMIMEType = "image/jpeg"

// Resolver runs the model fallback chain and enriches a winning answer
// with a reference photo.
type Resolver struct {
	backends []ModelBackend
	taxonomy domain.TaxonomyRepository
	log      *slog.Logger
}

func NewResolver(backends []ModelBackend, taxonomy domain.TaxonomyRepository, log *slog.Logger) *Resolver {
	return &Resolver{
		backends: backends,
		taxonomy: taxonomy,
		log:      log,
	}
}

// Identify tries each backend in order until one produces an answer.
// A backend call error advances the chain; a response that parses to
// nulls, or does not parse at all, ends it with ErrNotIdentifiable.
// The returned error is the failure reason shown to the user.
func (r *Resolver) Identify(ctx context.Context, image []byte, location *string) (domain.Identification, error) {
	prompt := identifyPrompt
	if location != nil && *location != "" {
		prompt += fmt.Sprintf("\n\nThe photo was taken near %s.", *location)
	}

	var lastErr error

	for i, backend := range r.backends {
		if i > 0 {
			prometheus.ModelFallbacks.Inc()
		}

		text, err := backend.Generate(ctx, prompt, image, imageMIMEType)
		if err != nil {
			prometheus.ModelAttempts.WithLabelValues(backend.Name(), "error").Inc()
			r.log.Warn("model attempt failed",
				"model", backend.Name(),
				"error", err,
			)
			lastErr = err
			continue
		}

		answer, outcome := extractAnswer(text)
		if outcome != answerParsed {
			prometheus.ModelAttempts.WithLabelValues(backend.Name(), "unparsable").Inc()
			r.log.Warn("model answer not parsable",
				"model", backend.Name(),
				"outcome", outcome,
			)
			return domain.Identification{}, domain.ErrNotIdentifiable
		}

		if !answer.complete() {
			prometheus.ModelAttempts.WithLabelValues(backend.Name(), "no_animal").Inc()
			return domain.Identification{}, domain.ErrNotIdentifiable
		}

		prometheus.ModelAttempts.WithLabelValues(backend.Name(), "success").Inc()
		result := domain.Identification{
			Species: domain.Species{
				CommonName:     *answer.CommonName,
				ScientificName: *answer.ScientificName,
			},
		}
		r.enrich(ctx, &result)
		return result, nil
	}

	if lastErr != nil {
		return domain.Identification{}, lastErr
	}
	return domain.Identification{}, domain.ErrAllModelsFailed
}

// enrich attaches a reference photo URL. Lookup failures never fail
// the identification.
func (r *Resolver) enrich(ctx context.Context, result *domain.Identification) {
	url, err := r.taxonomy.FindPhotoURL(ctx, result.CommonName)
	if err != nil {
		r.log.Debug("reference photo lookup failed",
			"commonName", result.CommonName,
			"error", err,
		)
		return
	}
	result.ReferenceImageURL = url
}
