package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/processor"
)

type ServiceConfig struct {
	// ConfidenceThreshold is the category similarity below which the
	// answer is not grounded in records.
	ConfidenceThreshold float64
	MaxResults          int
	Categories          []string
	ClassifierMaxTokens int
	ResponseMaxTokens   int
	Logger              *slog.Logger
}

type Request struct {
	Query      string
	PriorTurns []string
}

type Response struct {
	Answer         string
	Records        []processor.Record
	Classification models.Classification
	Category       string
	Confidence     float64
	Mode           Mode
	Warnings       []string
}

// Service answers shopper queries.
type Service struct {
	config      ServiceConfig
	embedder    types.Embedder
	matcher     *Matcher
	retriever   *Retriever
	synthesizer *Synthesizer
}

func NewWithConfig(config ServiceConfig, embedder types.Embedder, completer types.Completer, store types.CollectionStore) *Service {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Service{
		config:      config,
		embedder:    embedder,
		matcher:     NewMatcher(embedder, config.Categories),
		retriever:   NewRetriever(NewClassifier(completer, config.ClassifierMaxTokens), store, config.MaxResults),
		synthesizer: NewSynthesizer(completer, config.ResponseMaxTokens),
	}
}

// Search answers req. Failed lookups degrade to an ungrounded answer and
// are listed in Warnings; only a failed final completion is an error.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	query := ContextualQuery(req.Query, req.PriorTurns)
	log := s.config.Logger.With("query", req.Query)
	resp := &Response{Records: []processor.Record{}, Mode: ModeFallback, Confidence: -1}

	match, err := s.matcher.Match(ctx, query)
	if err != nil {
		log.Warn("category match failed", "error", err)
		resp.Warnings = append(resp.Warnings, err.Error())
		return s.respond(ctx, resp, query)
	}
	resp.Category = match.Category
	resp.Confidence = match.Confidence
	log.Debug("category matched", "category", match.Category, "confidence", match.Confidence)

	if match.Confidence < s.config.ConfidenceThreshold {
		return s.respond(ctx, resp, query)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Warn("query embedding failed", "error", err)
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("embed query: %v", err))
		return s.respond(ctx, resp, query)
	}

	retrieval, err := s.retriever.Retrieve(ctx, query, embedding, match.Category)
	resp.Classification = retrieval.Classification
	if err != nil {
		log.Warn("retrieval failed", "error", err)
		resp.Warnings = append(resp.Warnings, err.Error())
		return s.respond(ctx, resp, query)
	}

	resp.Records = processor.ParseSummaries(retrieval.Documents)
	resp.Mode = SelectMode(retrieval.Classification, match.Confidence, s.config.ConfidenceThreshold, resp.Records)
	if resp.Mode == ModeFallback {
		resp.Records = []processor.Record{}
	}
	log.Info("records retrieved", "classification", retrieval.Classification, "records", len(resp.Records), "mode", resp.Mode)

	return s.respond(ctx, resp, query)
}

func (s *Service) respond(ctx context.Context, resp *Response, query string) (*Response, error) {
	answer, err := s.synthesizer.Respond(ctx, resp.Mode, query, resp.Records)
	if err != nil {
		return nil, err
	}
	resp.Answer = answer
	return resp, nil
}

// ContextualQuery folds prior turns into the query text.
func ContextualQuery(query string, prior []string) string {
	if len(prior) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Here's the relevant chat history for context. Use it to inform your answer, but focus on the main user input.\n\n")
	b.WriteString("Chat History:\n")
	for i, turn := range prior {
		fmt.Fprintf(&b, "(%d) %s\n", i+1, turn)
	}
	b.WriteString("\nMain User Input:\n")
	b.WriteString(query)
	return b.String()
}
