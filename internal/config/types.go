package config

// Config is the top-level medeval configuration schema.
type Config struct {
	Version   int             `yaml:"version"`
	OutputDir string          `yaml:"output_dir"`
	Models    []ModelConfig   `yaml:"models"`
	Datasets  []DatasetConfig `yaml:"datasets"`
	Eval      EvalConfig      `yaml:"eval"`
}

// ModelConfig describes one evaluable model and the execution environment
// its evaluator runs in. Python names the interpreter of that environment;
// workers are launched with it directly instead of activating the
// environment process-wide.
type ModelConfig struct {
	ID          string  `yaml:"id"`
	Family      string  `yaml:"family"`
	Python      string  `yaml:"python"`
	Script      string  `yaml:"script"`
	ModelPath   string  `yaml:"model_path"`
	ModelBase   string  `yaml:"model_base"`
	ConvMode    string  `yaml:"conv_mode"`
	Temperature float64 `yaml:"temperature"`
}

// DatasetConfig describes one benchmark dataset slice.
type DatasetConfig struct {
	ID            string `yaml:"id"`
	QuestionsFile string `yaml:"questions_file"`
	ImageDir      string `yaml:"image_dir"`
	Filter        string `yaml:"filter"`
}

// EvalConfig carries run-wide evaluation settings. Workers defaults to
// one per device; fewer workers use a prefix of the device list.
type EvalConfig struct {
	SampleRatio      float64  `yaml:"sample_ratio"`
	Devices          []string `yaml:"devices"`
	Workers          int      `yaml:"workers"`
	KeepIntermediate bool     `yaml:"keep_intermediate"`
	Offline          bool     `yaml:"offline"`
}

// Model families supported by the orchestrator.
const (
	FamilyLLaVA    = "llava"
	FamilyMedGemma = "medgemma"
)

// ModelByID returns the model config with the given id.
func (c Config) ModelByID(id string) (ModelConfig, bool) {
	for _, model := range c.Models {
		if model.ID == id {
			return model, true
		}
	}
	return ModelConfig{}, false
}

// DatasetByID returns the dataset config with the given id.
func (c Config) DatasetByID(id string) (DatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.ID == id {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}
