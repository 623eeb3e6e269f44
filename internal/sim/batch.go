package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/snakesim/internal/games/snake"
)

// EpisodeSeed derives the rng of episode i from the master seed. The same
// pair always yields the same stream, whichever worker runs the episode.
func EpisodeSeed(master uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(master, uint64(i)))
}

// ErrNegativeEpisodes is returned by RunMany for a negative episode count.
var ErrNegativeEpisodes = errors.New("sim: negative episode count")

// Rand returns a fresh copy of the rng a batch episode was played with.
// Running RunEpisode with it on the same options and agent replays the
// episode exactly.
func (e Episode) Rand() *rand.Rand {
	return EpisodeSeed(e.Seed, e.Index)
}

// EpisodeError records a failed episode of a batch.
type EpisodeError struct {
	Index int
	Err   error
}

func (e *EpisodeError) Error() string {
	return fmt.Sprintf("episode %d: %v", e.Index, e.Err)
}

func (e *EpisodeError) Unwrap() error {
	return e.Err
}

// Batch is the result of RunMany. Episodes holds the successful episodes
// ordered by index; Failed lists the rest.
type Batch struct {
	Seed     uint64
	Episodes []Episode
	Failed   []EpisodeError
	Elapsed  time.Duration
}

// RunMany runs n independent episodes on at most Workers goroutines.
//
// Episode i uses EpisodeSeed(masterSeed, i), so a batch is reproducible
// from its seed. A failed episode is recorded in Batch.Failed unless
// FailFast is set, in which case the first failure cancels the rest and is
// returned as an *EpisodeError. Cancelling ctx stops the batch. A negative
// n is an error.
func (s *Simulator) RunMany(ctx context.Context, n int, agent Agent, masterSeed uint64) (*Batch, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeEpisodes, n)
	}
	start := time.Now()
	s.logger.Info("batch started", "episodes", n, "workers", s.opts.Workers, "seed", masterSeed)

	episodes := make([]Episode, n)
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ep, err := s.RunEpisode(gctx, agent, EpisodeSeed(masterSeed, i))
			if err != nil {
				if s.opts.FailFast {
					return &EpisodeError{Index: i, Err: err}
				}
				errs[i] = err
				return nil
			}
			ep.Index = i
			ep.Seed = masterSeed
			episodes[i] = ep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("batch aborted", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	b := &Batch{Seed: masterSeed, Elapsed: time.Since(start)}
	for i := range n {
		if errs[i] != nil {
			s.logger.Warn("episode failed", "episode", i, "err", errs[i])
			b.Failed = append(b.Failed, EpisodeError{Index: i, Err: errs[i]})
			continue
		}
		b.Episodes = append(b.Episodes, episodes[i])
	}

	st := b.Stats()
	s.logger.Info("batch finished",
		"episodes", len(b.Episodes),
		"failed", len(b.Failed),
		"steps", st.Steps,
		"wins", st.Wins,
		"score_mean", st.ScoreMean,
		"elapsed", b.Elapsed,
	)
	return b, nil
}

// Steps flattens every recorded step of the batch. Consumers should treat
// the result as an unordered multiset.
func (b *Batch) Steps() []Step {
	total := 0
	for _, ep := range b.Episodes {
		total += len(ep.Steps)
	}
	steps := make([]Step, 0, total)
	for _, ep := range b.Episodes {
		steps = append(steps, ep.Steps...)
	}
	return steps
}

// Stats aggregates a batch.
type Stats struct {
	Episodes   int
	Failed     int
	Wins       int
	Losses     int
	Truncated  int
	Steps      int // recorded steps across episodes
	ScoreMean  float64
	ScoreStd   float64
	ApplesMean float64
	TicksMean  float64
	LengthMean float64
	LengthMax  int
	Rewards    map[Reward]int
}

// Stats computes aggregate statistics over successful episodes.
func (b *Batch) Stats() Stats {
	st := Stats{
		Episodes: len(b.Episodes),
		Failed:   len(b.Failed),
		Rewards:  make(map[Reward]int),
	}
	if len(b.Episodes) == 0 {
		return st
	}

	scores := make([]float64, len(b.Episodes))
	apples := make([]float64, len(b.Episodes))
	ticks := make([]float64, len(b.Episodes))
	lengths := make([]float64, len(b.Episodes))
	for i, ep := range b.Episodes {
		switch {
		case ep.Won():
			st.Wins++
		case ep.Truncated:
			st.Truncated++
		default:
			st.Losses++
		}
		for _, step := range ep.Steps {
			st.Rewards[step.Reward]++
		}
		st.Steps += len(ep.Steps)
		scores[i] = float64(ep.Summary.Score)
		apples[i] = float64(ep.Summary.ApplesEaten)
		ticks[i] = float64(ep.Summary.Steps)
		lengths[i] = float64(ep.Summary.Length)
	}

	st.ScoreMean, st.ScoreStd = stat.PopMeanStdDev(scores, nil)
	st.ApplesMean = stat.Mean(apples, nil)
	st.TicksMean = stat.Mean(ticks, nil)
	st.LengthMean = stat.Mean(lengths, nil)
	st.LengthMax = int(floats.Max(lengths))
	return st
}

// Outcomes tallies terminal outcomes by kind, for logs and the ledger.
func (b *Batch) Outcomes() map[snake.OutcomeKind]int {
	m := make(map[snake.OutcomeKind]int)
	for _, ep := range b.Episodes {
		m[ep.Outcome.Kind]++
	}
	return m
}
