package di

import (
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/browser/rod"
	"vision-agent/internal/infrastructure/detector/omniparser"
	"vision-agent/internal/usecase/perception"
)

const (
	DetectorDOM        = "dom"
	DetectorOmniParser = "omniparser"
	DetectorVision     = "vision"
)

type Config struct {
	TaskName   string
	LogLevel   string
	LogDir     string
	LogConsole bool

	Browser rod.BrowserConfig

	Detector            string
	OmniParserURL       string
	OmniParserTimeout   time.Duration
	VisionAPIKey        string
	VisionModel         string
	VisionBaseURL       string
	DetectorRate        float64
	DetectorBurst       int
	ConfidenceThreshold float64

	SettleDelay time.Duration
	HistoryFile string
	RandomSeed  int64

	Goal    entity.Goal
	Explore entity.ExploreOptions
}

// LoadConfig reads every setting from cfg, falling back to the package
// defaults of each component.
func LoadConfig(cfg output.ConfigPort) Config {
	browser := rod.DefaultConfig()
	browser.Headless = cfg.GetBool("BROWSER_HEADLESS", browser.Headless)
	browser.NoSandbox = cfg.GetBool("BROWSER_NO_SANDBOX", browser.NoSandbox)
	browser.DevTools = cfg.GetBool("BROWSER_DEVTOOLS", browser.DevTools)
	browser.SlowMotion = cfg.GetDuration("BROWSER_SLOW_MOTION", browser.SlowMotion)
	browser.Timeout = cfg.GetDuration("BROWSER_TIMEOUT", browser.Timeout)
	browser.ViewportWidth = cfg.GetInt("BROWSER_VIEWPORT_WIDTH", browser.ViewportWidth)
	browser.ViewportHeight = cfg.GetInt("BROWSER_VIEWPORT_HEIGHT", browser.ViewportHeight)
	browser.MaxCaptureWidth = cfg.GetInt("CAPTURE_MAX_WIDTH", browser.MaxCaptureWidth)
	browser.StartURL = cfg.GetWithDefault("START_URL", browser.StartURL)

	omni := omniparser.DefaultConfig()

	return Config{
		TaskName:   cfg.GetWithDefault("TASK_NAME", "agent"),
		LogLevel:   cfg.GetWithDefault("LOG_LEVEL", "info"),
		LogDir:     cfg.GetWithDefault("LOG_DIR", "log"),
		LogConsole: cfg.GetBool("LOG_CONSOLE", false),

		Browser: browser,

		Detector:            cfg.GetWithDefault("DETECTOR", DetectorDOM),
		OmniParserURL:       cfg.GetWithDefault("OMNIPARSER_URL", omni.BaseURL),
		OmniParserTimeout:   cfg.GetDuration("OMNIPARSER_TIMEOUT", omni.Timeout),
		VisionAPIKey:        cfg.Get("OPENROUTER_API_KEY"),
		VisionModel:         cfg.Get("OPENROUTER_MODEL_NAME"),
		VisionBaseURL:       cfg.GetWithDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		DetectorRate:        cfg.GetFloat("DETECTOR_RATE", 0),
		DetectorBurst:       cfg.GetInt("DETECTOR_BURST", 1),
		ConfidenceThreshold: cfg.GetFloat("CONFIDENCE_THRESHOLD", perception.DefaultConfidenceThreshold),

		SettleDelay: cfg.GetDuration("SETTLE_DELAY", time.Second),
		HistoryFile: cfg.Get("HISTORY_FILE"),
		RandomSeed:  int64(cfg.GetInt("RANDOM_SEED", 0)),

		Goal: entity.Goal{
			Keywords: cfg.GetStrings("GOAL_KEYWORDS", nil),
			Context:  cfg.GetWithDefault("GOAL_CONTEXT", entity.DefaultGoalContext),
			MaxSteps: cfg.GetInt("GOAL_MAX_STEPS", entity.DefaultGoalMaxSteps),
		},
		Explore: entity.ExploreOptions{
			MaxActions: cfg.GetInt("EXPLORE_MAX_ACTIONS", entity.DefaultExploreMaxActions),
			WaitTime:   cfg.GetDuration("EXPLORE_WAIT_TIME", entity.DefaultExploreWait),
		},
	}
}
