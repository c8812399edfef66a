// SPDX-License-Identifier: MIT
/*
Package advisor defines the boundary to the genre classifier and EQ
suggestion models. Inference itself lives outside this module: a Model
supplies raw class probabilities and normalized band gains, and
ModelAdvisor turns those into labels and dB gain vectors that the
equalizer accepts directly.
*/
package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"eqlab/internal/audio"
	"eqlab/internal/log"
	"eqlab/internal/signalio"
)

// SampleRate is the rate every model input is resampled to.
const SampleRate = 16000

// Suggested gains span MinGainDB..MaxGainDB.
const (
	MinGainDB = -12.0
	MaxGainDB = 12.0
)

// DefaultLabels names classifier outputs when the model ships without a
// label list.
var DefaultLabels = []string{
	"Music", "Vocal", "Podcast", "EDM", "Rock",
	"Classical", "Jazz", "Hip-Hop", "Country", "Blues",
}

var ErrNoPrediction = errors.New("model returned no prediction")

// Classification is the classifier's top class.
type Classification struct {
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"`
}

// Advisor classifies a signal and suggests equalizer gains for it.
type Advisor interface {
	Classify(ctx context.Context, sig audio.Signal) (Classification, error)
	SuggestGains(ctx context.Context, sig audio.Signal) ([]float64, error)
}

// Model is the raw inference contract. Inputs are mono at SampleRate.
// NormalizedGains returns one value in [0, 1] per band.
type Model interface {
	Probabilities(ctx context.Context, sig audio.Signal) ([]float64, error)
	NormalizedGains(ctx context.Context, sig audio.Signal) ([]float64, error)
}

// ModelAdvisor implements Advisor on top of a Model.
type ModelAdvisor struct {
	model  Model
	labels []string
}

var _ Advisor = (*ModelAdvisor)(nil)

// NewModelAdvisor wraps model. A nil labels slice uses DefaultLabels.
func NewModelAdvisor(model Model, labels []string) *ModelAdvisor {
	if labels == nil {
		labels = DefaultLabels
	}
	return &ModelAdvisor{model: model, labels: append([]string(nil), labels...)}
}

func (a *ModelAdvisor) Classify(ctx context.Context, sig audio.Signal) (Classification, error) {
	in, err := prepare(sig)
	if err != nil {
		return Classification{}, err
	}
	probs, err := a.model.Probabilities(ctx, in)
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	if len(probs) == 0 {
		return Classification{}, fmt.Errorf("classify: %w", ErrNoPrediction)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return Classification{
		Label:         LabelFor(best, a.labels),
		Confidence:    probs[best],
		Probabilities: probs,
	}, nil
}

func (a *ModelAdvisor) SuggestGains(ctx context.Context, sig audio.Signal) ([]float64, error) {
	in, err := prepare(sig)
	if err != nil {
		return nil, err
	}
	norm, err := a.model.NormalizedGains(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("suggest gains: %w", err)
	}
	if len(norm) == 0 {
		return nil, fmt.Errorf("suggest gains: %w", ErrNoPrediction)
	}
	gains := DenormalizeGains(norm)
	log.Debugf("Advisor: Suggested gains %v", gains)
	return gains, nil
}

// prepare resamples sig to SampleRate.
func prepare(sig audio.Signal) (audio.Signal, error) {
	if sig.SampleRate == SampleRate {
		return sig, nil
	}
	out, err := signalio.Resample(sig, SampleRate)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("prepare model input: %w", err)
	}
	return out, nil
}

// DenormalizeGains maps [0, 1] model outputs onto MinGainDB..MaxGainDB and
// rounds to 0.1 dB.
func DenormalizeGains(norm []float64) []float64 {
	gains := make([]float64, len(norm))
	for i, v := range norm {
		db := v*(MaxGainDB-MinGainDB) + MinGainDB
		gains[i] = math.Round(db*10) / 10
	}
	return gains
}

// LabelFor returns labels[idx], or "Class_<idx>" past the end.
func LabelFor(idx int, labels []string) string {
	if idx >= 0 && idx < len(labels) {
		return labels[idx]
	}
	return fmt.Sprintf("Class_%d", idx)
}

// Lazy defers building a Model until the first call that needs it. The
// constructor runs at most once; its error is returned on every call.
type Lazy struct {
	once  sync.Once
	build func() (Model, error)
	model Model
	err   error
}

var _ Model = (*Lazy)(nil)

func NewLazy(build func() (Model, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) get() (Model, error) {
	l.once.Do(func() {
		log.Infof("Advisor: Loading model")
		l.model, l.err = l.build()
		if l.err != nil {
			log.Errorf("Advisor: Model load failed: %v", l.err)
		}
	})
	return l.model, l.err
}

func (l *Lazy) Probabilities(ctx context.Context, sig audio.Signal) ([]float64, error) {
	m, err := l.get()
	if err != nil {
		return nil, err
	}
	return m.Probabilities(ctx, sig)
}

func (l *Lazy) NormalizedGains(ctx context.Context, sig audio.Signal) ([]float64, error) {
	m, err := l.get()
	if err != nil {
		return nil, err
	}
	return m.NormalizedGains(ctx, sig)
}
