package commands

import (
	"fmt"

	"github.com/haivivi/spotkit/pkg/audio/frontend"
	"github.com/haivivi/spotkit/pkg/cli"
	"github.com/haivivi/spotkit/pkg/kws"
	"github.com/haivivi/spotkit/pkg/tflite"
)

// spotSettings is the fully resolved detection configuration: profile
// values with command-line overrides applied.
type spotSettings struct {
	Model         string
	Labels        []string
	Threshold     uint8
	WindowMs      int
	SuppressionMs int
	MinCount      int
	Threads       int
}

// settingsFromProfile seeds settings from a stored profile, resolving the
// model path against the models directory.
func settingsFromProfile(p *cli.Profile) (*spotSettings, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, err
	}
	return &spotSettings{
		Model:         paths.ResolveModel(p.Model),
		Labels:        p.Labels,
		Threshold:     p.DetectionThreshold,
		WindowMs:      p.AverageWindowMs,
		SuppressionMs: p.SuppressionMs,
		MinCount:      p.MinimumCount,
		Threads:       p.Threads,
	}, nil
}

// pipelineConfig builds the pipeline configuration: training-time defaults
// with the settings' decision parameters on top.
func (s *spotSettings) pipelineConfig() kws.Config {
	cfg := kws.DefaultConfig()
	cfg.Labels = s.Labels
	if s.Threshold != 0 {
		cfg.DetectionThreshold = s.Threshold
	}
	if s.WindowMs != 0 {
		cfg.AverageWindowMs = s.WindowMs
	}
	if s.SuppressionMs != 0 {
		cfg.SuppressionMs = s.SuppressionMs
	}
	if s.MinCount != 0 {
		cfg.MinimumCount = s.MinCount
	}
	return cfg
}

// spotter bundles one assembled pipeline with the resources backing it.
type spotter struct {
	Pipe  *kws.Pipeline
	Cfg   kws.Config
	model *tflite.Model
}

// newSpotter loads the model and assembles a ready pipeline delivering
// results to sink.
func newSpotter(s *spotSettings, sink kws.Sink) (*spotter, error) {
	cfg := s.pipelineConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	front, err := frontend.New(frontend.DefaultConfig())
	if err != nil {
		return nil, err
	}

	model, err := tflite.NewModel(s.Model)
	if err != nil {
		return nil, err
	}

	var engineOpts []tflite.InterpreterOption
	if s.Threads > 0 {
		engineOpts = append(engineOpts, tflite.WithThreads(s.Threads))
	}
	engine, err := tflite.NewEngine(model, engineOpts...)
	if err != nil {
		model.Close()
		return nil, fmt.Errorf("model %s: %w", s.Model, err)
	}

	pipe, err := kws.NewPipeline(cfg, front, engine, sink)
	if err != nil {
		engine.Close()
		model.Close()
		return nil, fmt.Errorf("model %s: %w", s.Model, err)
	}

	return &spotter{Pipe: pipe, Cfg: cfg, model: model}, nil
}

// Close releases the pipeline's engine and the model.
func (sp *spotter) Close() error {
	err := sp.Pipe.Close()
	if mErr := sp.model.Close(); err == nil {
		err = mErr
	}
	return err
}

// Event is the serialized form of one detection result.
type Event struct {
	TimeMs  int64  `json:"time_ms" yaml:"time_ms"`
	Label   string `json:"label" yaml:"label"`
	Score   uint8  `json:"score" yaml:"score"`
	Trigger bool   `json:"trigger" yaml:"trigger"`
}

func eventFromResult(r kws.Result) Event {
	return Event{TimeMs: r.Time, Label: r.Label, Score: r.Score, Trigger: r.IsNew}
}
