package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/application/service"
	"vision-agent/internal/infrastructure/browser/rod"
	"vision-agent/internal/infrastructure/detector"
	"vision-agent/internal/infrastructure/detector/omniparser"
	"vision-agent/internal/infrastructure/detector/vision"
	"vision-agent/internal/infrastructure/historysink"
	"vision-agent/internal/infrastructure/logger"
	"vision-agent/internal/infrastructure/userinteraction"
	"vision-agent/internal/usecase/agent"
	"vision-agent/internal/usecase/executor"
	"vision-agent/internal/usecase/loop"
	"vision-agent/internal/usecase/perception"
)

type Container struct {
	Config    Config
	Logger    output.LoggerPort
	Progress  output.ProgressPort
	Detectors *service.DetectorRegistry
	Host      *agent.Host
}

// Options lets callers and tests replace the external collaborators.
type Options struct {
	Logger   output.LoggerPort
	Provider output.SurfaceProvider
	Progress output.ProgressPort
}

func NewContainer(ctx context.Context, cfg Config, opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		logCfg := logger.DefaultConfig(cfg.TaskName)
		logCfg.Level = cfg.LogLevel
		logCfg.Dir = cfg.LogDir
		logCfg.Console = cfg.LogConsole
		l, err := logger.NewLoggerAdapter(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	provider := opts.Provider
	if provider == nil {
		provider = rod.NewProvider(cfg.Browser)
	}

	progress := opts.Progress
	if progress == nil {
		progress = userinteraction.NewConsoleProgress()
	}

	c := &Container{
		Config:    cfg,
		Logger:    log,
		Progress:  progress,
		Detectors: service.NewDetectorRegistry(),
	}
	registerDetectors(c.Detectors, cfg, log.Named("detector"))

	if _, ok := c.Detectors.Get(cfg.Detector); !ok {
		log.Close()
		return nil, fmt.Errorf("unknown detector %q (available: %v)", cfg.Detector, c.Detectors.Names())
	}

	c.Host = agent.NewHost(provider, c.buildAgent, log.Named("host"))
	log.Info("Container ready", "detector", cfg.Detector, "headless", cfg.Browser.Headless)
	return c, nil
}

func (c *Container) buildAgent(surface output.SurfacePort) (*agent.Agent, error) {
	det, err := c.Detectors.Build(c.Config.Detector, surface)
	if err != nil {
		return nil, err
	}

	var sink output.HistorySink
	if c.Config.HistoryFile != "" {
		fileSink, err := historysink.Open(c.Config.HistoryFile)
		if err != nil {
			return nil, err
		}
		sink = fileSink
	}

	seed := c.Config.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	agentCfg := agent.Config{
		Executor: executor.Config{SettleDelay: c.Config.SettleDelay},
		Perception: perception.Config{
			ConfidenceThreshold: c.Config.ConfidenceThreshold,
			Now:                 time.Now,
		},
		Explore: loop.ExploreDeps{Random: rand.New(rand.NewSource(seed))},
	}
	return agent.New(surface, det, sink, c.Logger.Named("agent"), c.Progress, agentCfg), nil
}

func registerDetectors(registry *service.DetectorRegistry, cfg Config, log output.LoggerPort) {
	registry.Register(DetectorDOM, func(surface output.SurfacePort) (output.DetectorPort, error) {
		browser, ok := surface.(*rod.BrowserAdapter)
		if !ok {
			return nil, fmt.Errorf("dom detector needs a browser surface, got %T", surface)
		}
		return rod.NewDOMDetector(browser), nil
	})

	registry.Register(DetectorOmniParser, func(output.SurfacePort) (output.DetectorPort, error) {
		client := omniparser.NewClient(omniparser.Config{
			BaseURL: cfg.OmniParserURL,
			Timeout: cfg.OmniParserTimeout,
			Logger:  log,
		})
		return detector.NewLimited(client, cfg.DetectorRate, cfg.DetectorBurst), nil
	})

	registry.Register(DetectorVision, func(output.SurfacePort) (output.DetectorPort, error) {
		if cfg.VisionAPIKey == "" || cfg.VisionModel == "" {
			return nil, fmt.Errorf("vision detector needs OPENROUTER_API_KEY and OPENROUTER_MODEL_NAME")
		}
		visionCfg := vision.DefaultConfig(cfg.VisionAPIKey, cfg.VisionModel)
		visionCfg.BaseURL = cfg.VisionBaseURL
		visionCfg.Logger = log
		return detector.NewLimited(vision.NewDetector(visionCfg), cfg.DetectorRate, cfg.DetectorBurst), nil
	})
}

func (c *Container) Close() {
	if c.Host != nil {
		if err := c.Host.Close(); err != nil {
			c.Logger.Warn("Host close failed", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
