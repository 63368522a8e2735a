package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/encoder"
	"github.com/fernwehlabs/sift/internal/memory"
	"github.com/fernwehlabs/sift/internal/network"
)

const instrumentationName = "github.com/fernwehlabs/sift/internal/classifier"

// Service exposes the content-filtering workflows. Category parameters are
// raw strings validated at this boundary; anything outside the fixed set
// fails with memory.ErrUnknownCategory.
type Service interface {
	// Score returns the network's inappropriateness score for text (0-1).
	Score(ctx context.Context, text string) float64

	// Train runs supervised training toward the given label. When safe and
	// the resulting score falls below the ban line, the item is stored.
	// Unsafe items are never stored by Train. epochs <= 0 uses the
	// configured default. Returns the final training loss.
	Train(ctx context.Context, text string, safe bool, category string, epochs int) (float64, error)

	// AddItem trains on the item and then records it unconditionally:
	// safe items at their re-scored value, unsafe items at the fixed
	// override score so they always read as banned.
	AddItem(ctx context.Context, text string, safe bool, category string) error

	// Decide lets the classifier label text on its own. Items it judges
	// safe are stored and lightly reinforced; anything at or above the
	// ban line is left untouched for a human to override.
	Decide(ctx context.Context, text string, category string) (Decision, error)

	// SetLabel applies a manual label or override. Any existing entry is
	// removed first. A safe label retrains and stores the item only if
	// its retrained score clears the ban line; an unsafe label retrains
	// toward banned and leaves the item removed.
	SetLabel(ctx context.Context, text string, safe bool, category string) (LabelResult, error)

	// Respond returns the stored allowed item nearest to the prompt, or
	// ok=false when the category is empty or nothing matches closely
	// enough.
	Respond(ctx context.Context, prompt string, category string) (match string, ok bool, err error)

	// Items lists the allowed entries of a category in first-inserted
	// order.
	Items(ctx context.Context, category string) ([]string, error)

	// Size returns the total number of stored entries.
	Size(ctx context.Context) int

	// BanThreshold returns the ban line scores are judged against.
	BanThreshold() float64

	// Save persists the whole memory store to the snapshot path.
	Save(ctx context.Context) error
}

type service struct {
	cfg          *Config
	net          *network.Network
	store        *memory.Store
	snapshotPath string
	logger       *zap.Logger

	tracer        trace.Tracer
	meter         metric.Meter
	trainCounter  metric.Int64Counter
	decideCounter metric.Int64Counter
	matchCounter  metric.Int64Counter

	// Serializes every operation: training mutates shared network weights
	// in place and must not run concurrently.
	mu sync.Mutex
}

// NewService creates a classifier with randomized network weights and a
// memory store restored from snapshotPath. A missing snapshot is normal
// first-run state; a corrupt one is logged as a warning and replaced with
// an empty store. An empty snapshotPath disables persistence.
func NewService(cfg *Config, snapshotPath string, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	net, err := network.New(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("classifier: create network: %w", err)
	}

	s := &service{
		cfg:          cfg,
		net:          net,
		store:        memory.NewStore(cfg.BanThreshold),
		snapshotPath: snapshotPath,
		logger:       logger,
		tracer:       otel.Tracer(instrumentationName),
		meter:        otel.Meter(instrumentationName),
	}
	s.initMetrics()

	if snapshotPath != "" {
		snap, status, err := memory.LoadSnapshot(snapshotPath)
		switch status {
		case memory.StatusAbsent:
			logger.Info("no snapshot found, starting with empty store",
				zap.String("path", snapshotPath))
		case memory.StatusCorrupt:
			logger.Warn("snapshot unreadable, falling back to empty store",
				zap.String("path", snapshotPath), zap.Error(err))
		case memory.StatusLoaded:
			s.store.Restore(snap)
			logger.Info("snapshot restored",
				zap.String("path", snapshotPath), zap.Int("entries", s.store.Len()))
		}
	}

	return s, nil
}

func (s *service) initMetrics() {
	var err error

	s.trainCounter, err = s.meter.Int64Counter(
		"sift.classifier.trainings_total",
		metric.WithDescription("Total supervised training calls, labeled by safe/unsafe"),
		metric.WithUnit("{training}"),
	)
	if err != nil {
		s.logger.Warn("failed to create training counter", zap.Error(err))
	}

	s.decideCounter, err = s.meter.Int64Counter(
		"sift.classifier.decisions_total",
		metric.WithDescription("Total self-supervised decisions, labeled by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		s.logger.Warn("failed to create decision counter", zap.Error(err))
	}

	s.matchCounter, err = s.meter.Int64Counter(
		"sift.classifier.matches_total",
		metric.WithDescription("Total respond lookups, labeled by hit/miss"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		s.logger.Warn("failed to create match counter", zap.Error(err))
	}
}

// encode builds the network input for text. The vector length always
// matches the network's input size, so dimension errors cannot occur on
// internal paths.
func (s *service) encode(text string) []float64 {
	return encoder.Encode(text, s.cfg.Network.InputSize)
}

// scoreLocked returns output unit 0 for text. The remaining output units
// are computed but unused; only index 0 carries meaning. Callers hold mu.
func (s *service) scoreLocked(text string) float64 {
	out, err := s.net.Predict(s.encode(text))
	if err != nil {
		// Unreachable: encode always produces InputSize-length vectors.
		s.logger.Error("predict failed", zap.Error(err))
		return 0
	}
	return out[0]
}

// trainLocked runs epochs gradient steps toward a uniform 0/1 target and
// stores the item when it trained safe and scores below the ban line.
// Callers hold mu.
func (s *service) trainLocked(text string, safe bool, cat memory.Category, epochs int) (float64, error) {
	input := s.encode(text)
	targets := make([]float64, s.cfg.Network.OutputSize)
	if !safe {
		for k := range targets {
			targets[k] = 1
		}
	}

	var loss float64
	for i := 0; i < epochs; i++ {
		var err error
		loss, err = s.net.TrainStep(input, targets)
		if err != nil {
			return 0, fmt.Errorf("classifier: train step: %w", err)
		}
	}

	pred := s.scoreLocked(text)
	if safe && !s.store.IsBanned(pred) {
		s.store.Add(cat, text, pred)
	}
	return loss, nil
}

func (s *service) Score(ctx context.Context, text string) float64 {
	_, span := s.tracer.Start(ctx, "classifier.score")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	score := s.scoreLocked(text)
	span.SetAttributes(attribute.Float64("score", score))
	return score
}

func (s *service) Train(ctx context.Context, text string, safe bool, category string, epochs int) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.train")
	defer span.End()
	span.SetAttributes(attribute.Bool("safe", safe), attribute.String("category", category))

	cat, err := memory.ParseCategory(category)
	if err != nil {
		return 0, err
	}
	if epochs <= 0 {
		epochs = s.cfg.TrainEpochs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loss, err := s.trainLocked(text, safe, cat, epochs)
	if err != nil {
		return 0, err
	}

	s.addMetric(ctx, s.trainCounter, attribute.Bool("safe", safe))
	s.logger.Debug("trained",
		zap.String("category", category),
		zap.Bool("safe", safe),
		zap.Int("epochs", epochs),
		zap.Float64("loss", loss))
	return loss, nil
}

func (s *service) AddItem(ctx context.Context, text string, safe bool, category string) error {
	ctx, span := s.tracer.Start(ctx, "classifier.add_item")
	defer span.End()
	span.SetAttributes(attribute.Bool("safe", safe), attribute.String("category", category))

	cat, err := memory.ParseCategory(category)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.trainLocked(text, safe, cat, s.cfg.TrainEpochs); err != nil {
		return err
	}

	// The label overrides the network here: unsafe items are pinned at a
	// banned score even if the network disagrees.
	if safe {
		s.store.Put(cat, text, s.scoreLocked(text))
	} else {
		s.store.Put(cat, text, s.cfg.UnsafeScore)
	}

	s.addMetric(ctx, s.trainCounter, attribute.Bool("safe", safe))
	return nil
}

func (s *service) Decide(ctx context.Context, text string, category string) (Decision, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.decide")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	cat, err := memory.ParseCategory(category)
	if err != nil {
		return Decision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	score := s.scoreLocked(text)
	d := Decision{Safe: !s.store.IsBanned(score), Score: score}
	span.SetAttributes(attribute.Bool("safe", d.Safe), attribute.Float64("score", score))

	// Only the safe direction self-reinforces; anything at or above the
	// line waits for a human override.
	if d.Safe {
		s.store.Add(cat, text, score)
		if _, err := s.trainLocked(text, true, cat, s.cfg.ReinforceEpochs); err != nil {
			return Decision{}, err
		}
	}

	s.addMetric(ctx, s.decideCounter, attribute.Bool("safe", d.Safe))
	return d, nil
}

func (s *service) SetLabel(ctx context.Context, text string, safe bool, category string) (LabelResult, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.set_label")
	defer span.End()
	span.SetAttributes(attribute.Bool("safe", safe), attribute.String("category", category))

	cat, err := memory.ParseCategory(category)
	if err != nil {
		return LabelResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Undo any prior decision for this text before retraining.
	s.store.Remove(cat, text)

	if _, err := s.trainLocked(text, safe, cat, s.cfg.TrainEpochs); err != nil {
		return LabelResult{}, err
	}

	res := LabelResult{Safe: safe, Score: s.scoreLocked(text)}
	if safe && !s.store.IsBanned(res.Score) {
		s.store.Add(cat, text, res.Score)
		res.Stored = true
	}
	// An unsafe label leaves the item removed entirely. This is a
	// narrower effect than AddItem's pinned override entry.

	s.addMetric(ctx, s.trainCounter, attribute.Bool("safe", safe))
	s.logger.Debug("label applied",
		zap.String("category", category),
		zap.Bool("safe", safe),
		zap.Bool("stored", res.Stored),
		zap.Float64("score", res.Score))
	return res, nil
}

func (s *service) Respond(ctx context.Context, prompt string, category string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "classifier.respond")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	cat, err := memory.ParseCategory(category)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	texts := s.store.AllowedTexts(cat)
	if len(texts) == 0 {
		s.addMetric(ctx, s.matchCounter, attribute.Bool("hit", false))
		return "", false, nil
	}

	promptVec := s.encode(prompt)
	best, bestText := -1.0, ""
	for _, item := range texts {
		sim := encoder.Similarity(promptVec, s.encode(item))
		// The gate uses the item's current network score, not the stored
		// one: an item the net has since soured on is skipped. Ties keep
		// the first-inserted entry because the comparison is strict.
		if sim > best && !s.store.IsBanned(s.scoreLocked(item)) {
			best, bestText = sim, item
		}
	}

	hit := best > s.cfg.MatchThreshold
	s.addMetric(ctx, s.matchCounter, attribute.Bool("hit", hit))
	if !hit {
		return "", false, nil
	}
	span.SetAttributes(attribute.Float64("similarity", best))
	return bestText, true, nil
}

func (s *service) Items(ctx context.Context, category string) ([]string, error) {
	cat, err := memory.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.AllowedTexts(cat), nil
}

func (s *service) Size(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

func (s *service) BanThreshold() float64 {
	return s.cfg.BanThreshold
}

func (s *service) Save(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "classifier.save")
	defer span.End()

	if s.snapshotPath == "" {
		return errors.New("classifier: no snapshot path configured")
	}

	s.mu.Lock()
	snap := s.store.Snapshot()
	s.mu.Unlock()

	if err := memory.SaveSnapshot(s.snapshotPath, snap); err != nil {
		return err
	}
	s.logger.Debug("snapshot saved", zap.String("path", s.snapshotPath))
	return nil
}

func (s *service) addMetric(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c != nil {
		c.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
