package quizgen

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizway/quizway/internal/oracle"
	"github.com/quizway/quizway/internal/quiz"
)

// Generator runs the per-unit synthesis protocol: one oracle call, one
// stricter retry on a parse failure, then the local fallback. Whatever
// happens upstream, the caller gets a Result.
type Generator struct {
	oracle oracle.Oracle // nil means fallback-only mode
	stats  *oracle.Stats
	logger *slog.Logger
}

func New(o oracle.Oracle, stats *oracle.Stats, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{oracle: o, stats: stats, logger: logger}
}

// Generate produces questions for one text unit. Oracle and validation
// failures are absorbed into the fallback path; Reason records which path
// produced the questions.
func (g *Generator) Generate(ctx context.Context, title, text string, count int) quiz.Result {
	if g.oracle == nil {
		return quiz.Result{
			Questions: Fallback(text, count),
			Reason:    quiz.ReasonFallback,
		}
	}

	raw, err := g.callOracle(ctx, BuildPrompt(title, text, count))
	if err != nil {
		g.logger.Warn("oracle call failed, using fallback",
			"unit", title,
			"error", err)
		return quiz.Result{
			Questions: Fallback(text, count),
			Reason:    quiz.ReasonOracleDown,
		}
	}

	questions, parseErr := Parse(raw)
	if parseErr == nil {
		return quiz.Result{Questions: capQuestions(questions, count), Reason: quiz.ReasonAI}
	}
	g.logger.Warn("oracle response failed validation, retrying",
		"unit", title,
		"error", parseErr)

	raw, err = g.callOracle(ctx, BuildStrictPrompt(title, text, count))
	if err != nil {
		g.logger.Warn("oracle retry failed, using fallback",
			"unit", title,
			"error", err)
		return quiz.Result{
			Questions: Fallback(text, count),
			Reason:    quiz.ReasonOracleDown,
		}
	}

	questions, parseErr = Parse(raw)
	if parseErr == nil {
		return quiz.Result{Questions: capQuestions(questions, count), Reason: quiz.ReasonAIRetry}
	}
	g.logger.Warn("oracle retry failed validation, using fallback",
		"unit", title,
		"error", parseErr)
	return quiz.Result{
		Questions: Fallback(text, count),
		Reason:    quiz.ReasonInvalidAI,
	}
}

func (g *Generator) callOracle(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	raw, err := g.oracle.Generate(ctx, prompt)
	if g.stats != nil && err == nil {
		g.stats.Record(time.Since(start).Milliseconds())
	}
	return raw, err
}

func capQuestions(questions []quiz.Question, count int) []quiz.Question {
	if count > 0 && len(questions) > count {
		return questions[:count]
	}
	return questions
}
