package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"classifyd/internal/common/fsutil"
	"classifyd/pkg/types"
)

// LoadClassNames reads the ordered class name list from path. The format is
// chosen by extension: .json (array of strings), .yaml/.yml (sequence of
// strings) or .txt (one name per line, blank lines skipped).
func LoadClassNames(path string) ([]string, error) {
	abs, err := fsutil.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("class names path: %w", err)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read class names: %w", err)
	}
	var names []string
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".json":
		if err := json.Unmarshal(b, &names); err != nil {
			return nil, fmt.Errorf("parse class names json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &names); err != nil {
			return nil, fmt.Errorf("parse class names yaml: %w", err)
		}
	case ".txt":
		sc := bufio.NewScanner(bytes.NewReader(b))
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				names = append(names, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("scan class names: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported class names extension: %s", ext)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no class names in %s", abs)
	}
	return names, nil
}

// Describe builds the model descriptor for the file at path. The runtime is
// derived from the extension (.onnx or .tflite); ID is the file name and Name
// the file name without extension.
func Describe(path string) (types.Model, error) {
	abs, err := fsutil.Resolve(path)
	if err != nil {
		return types.Model{}, fmt.Errorf("model path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return types.Model{}, fmt.Errorf("model file not found: %s", abs)
	}
	if !fsutil.IsRegularFile(abs) {
		return types.Model{}, fmt.Errorf("model path is not a regular file: %s", abs)
	}
	id := filepath.Base(abs)
	ext := strings.ToLower(filepath.Ext(id))
	var rt string
	switch ext {
	case ".onnx":
		rt = types.RuntimeONNX
	case ".tflite":
		rt = types.RuntimeTFLite
	default:
		return types.Model{}, fmt.Errorf("unsupported model format %q (want .onnx or .tflite)", ext)
	}
	return types.Model{
		ID:      id,
		Name:    strings.TrimSuffix(id, filepath.Ext(id)),
		Path:    abs,
		Runtime: rt,
	}, nil
}
