package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
output_dir: "eval_results"

models:
  - id: medllava
    family: llava
    python: "llava_env/bin/python"
    script: "llava/eval/eval_pattern_matching.py"
    model_path: "microsoft/llava-med-v1.5-mistral-7b"
    conv_mode: vicuna_v1
    temperature: 0.2
  - id: medgemma
    family: medgemma
    python: "medgemma_env/bin/python"
    script: "run_medgemma.py"
    model_path: "google/medgemma-4b-it"

datasets:
  - id: chest_ct
    questions_file: "OmniMedVQA/QA_information/Open-access/Chest CT Scan.json"
    image_dir: "OmniMedVQA"
    filter: "Chest CT Scan"

eval:
  sample_ratio: 1.0
  devices: ["0", "1"]
  keep_intermediate: false
  offline: true
`

// Scaffold writes a starter config under root. It refuses to overwrite an
// existing config file.
func Scaffold(root string) (string, error) {
	dir := ConfigDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := ConfigPath(root)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %s already exists", path)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
