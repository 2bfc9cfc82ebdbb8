package config

// Default values applied during normalization.
const (
	DefaultSampleRatio = 1.0
	DefaultOutputDir   = "eval_results"
)

// Normalize fills defaults that validation and runs rely on.
func Normalize(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Eval.SampleRatio == 0 {
		cfg.Eval.SampleRatio = DefaultSampleRatio
	}
	if len(cfg.Eval.Devices) == 0 {
		cfg.Eval.Devices = []string{"0"}
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = len(cfg.Eval.Devices)
	}
	for i := range cfg.Models {
		if cfg.Models[i].Family == FamilyLLaVA && cfg.Models[i].ConvMode == "" {
			cfg.Models[i].ConvMode = "vicuna_v1"
		}
	}
}
