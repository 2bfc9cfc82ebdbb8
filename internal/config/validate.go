package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a config for correctness. Relative paths are resolved
// against baseDir. A model whose interpreter is missing fails validation
// here, before any worker can be dispatched.
func Validate(cfg *Config, baseDir string) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		add("output_dir", "is required")
	}

	modelIDs := map[string]struct{}{}
	if len(cfg.Models) == 0 {
		add("models", "at least one model is required")
	}
	for i, model := range cfg.Models {
		fieldPrefix := fmt.Sprintf("models[%d]", i)
		id := strings.TrimSpace(model.ID)
		if id == "" {
			add(fieldPrefix+".id", "is required")
		} else if _, exists := modelIDs[id]; exists {
			add("models.id", fmt.Sprintf("duplicate id %q", id))
		} else {
			modelIDs[id] = struct{}{}
		}
		switch model.Family {
		case "":
			add(fieldPrefix+".family", "is required")
		case FamilyLLaVA, FamilyMedGemma:
		default:
			add(fieldPrefix+".family", fmt.Sprintf("unsupported family %q (expected %s|%s)", model.Family, FamilyLLaVA, FamilyMedGemma))
		}
		if strings.TrimSpace(model.Python) == "" {
			add(fieldPrefix+".python", "is required")
		} else if !fileExists(resolvePath(baseDir, model.Python)) {
			add(fieldPrefix+".python", fmt.Sprintf("execution environment interpreter %q not found", model.Python))
		}
		if strings.TrimSpace(model.Script) == "" {
			add(fieldPrefix+".script", "is required")
		}
		if strings.TrimSpace(model.ModelPath) == "" {
			add(fieldPrefix+".model_path", "is required")
		}
		if model.Temperature < 0 {
			add(fieldPrefix+".temperature", "must be >= 0")
		}
	}

	datasetIDs := map[string]struct{}{}
	if len(cfg.Datasets) == 0 {
		add("datasets", "at least one dataset is required")
	}
	for i, ds := range cfg.Datasets {
		fieldPrefix := fmt.Sprintf("datasets[%d]", i)
		id := strings.TrimSpace(ds.ID)
		if id == "" {
			add(fieldPrefix+".id", "is required")
		} else if _, exists := datasetIDs[id]; exists {
			add("datasets.id", fmt.Sprintf("duplicate id %q", id))
		} else {
			datasetIDs[id] = struct{}{}
		}
		if strings.TrimSpace(ds.QuestionsFile) == "" {
			add(fieldPrefix+".questions_file", "is required")
		} else if !fileExists(resolvePath(baseDir, ds.QuestionsFile)) {
			add(fieldPrefix+".questions_file", fmt.Sprintf("file %q not found", ds.QuestionsFile))
		}
		if strings.TrimSpace(ds.ImageDir) == "" {
			add(fieldPrefix+".image_dir", "is required")
		}
	}

	if cfg.Eval.SampleRatio <= 0 || cfg.Eval.SampleRatio > 1 {
		add("eval.sample_ratio", fmt.Sprintf("ratio %g out of range (0, 1]", cfg.Eval.SampleRatio))
	}
	seenDevices := map[string]struct{}{}
	for i, device := range cfg.Eval.Devices {
		if strings.TrimSpace(device) == "" {
			add(fmt.Sprintf("eval.devices[%d]", i), "must not be empty")
			continue
		}
		if _, exists := seenDevices[device]; exists {
			add("eval.devices", fmt.Sprintf("duplicate device %q", device))
		}
		seenDevices[device] = struct{}{}
	}
	if cfg.Eval.Workers < 1 {
		add("eval.workers", "must be >= 1")
	} else if cfg.Eval.Workers > len(cfg.Eval.Devices) {
		add("eval.workers", fmt.Sprintf("%d workers for %d devices", cfg.Eval.Workers, len(cfg.Eval.Devices)))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
