package textnorm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Logger is the minimal logging interface needed by NormalizeDir. Defined
// here (rather than importing the logging package) so that textnorm remains
// dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Skipped records one input file whose normalization failed.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DirResult is the outcome of normalizing a directory.
type DirResult struct {
	Cleaned []string  // clean file paths, in discovery order
	Skipped []Skipped // per-file failures, never fatal to siblings
}

// Report file extensions accepted as batch inputs (lowercase, leading dot).
var textExtensions = map[string]bool{
	".txt": true,
}

// Discover collects the top-level files in inputDir with text extensions and
// returns the paths sorted lexicographically for deterministic processing
// order. Subdirectories are not descended: clean files keep their basename,
// so nested inputs sharing a basename would silently collapse onto one clean
// path and one output path.
func Discover(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if textExtensions[ext] {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// NormalizeBytes decodes raw with encoding fallback and applies the portable
// punctuation substitution. Returns the clean UTF-8 text and the source
// encoding that was used.
func NormalizeBytes(raw []byte) (string, string, error) {
	text, enc, err := Decode(raw)
	if err != nil {
		return "", "", err
	}
	return Clean(text), enc, nil
}

// NormalizeFile rewrites one raw file to cleanPath as canonical UTF-8. The
// raw file is never mutated. Returns the detected source encoding.
func NormalizeFile(rawPath, cleanPath string) (string, error) {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rawPath, err)
	}
	text, enc, err := NormalizeBytes(raw)
	if err != nil {
		return "", fmt.Errorf("normalizing %s: %w", rawPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(cleanPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", cleanPath, err)
	}
	return enc, nil
}

// NormalizeDir normalizes every discovered input file into cleanDir,
// preserving filenames. A single file's failure is logged and recorded but
// never aborts normalization of sibling files.
func NormalizeDir(inputDir, cleanDir string, verbose bool, log Logger) (DirResult, error) {
	var res DirResult

	files, err := Discover(inputDir)
	if err != nil {
		return res, fmt.Errorf("discovering inputs: %w", err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no .txt files found in %s", inputDir)
	}

	for _, path := range files {
		cleanPath := filepath.Join(cleanDir, filepath.Base(path))
		enc, err := NormalizeFile(path, cleanPath)
		if err != nil {
			log.Warn("Skip (normalization failed): %s: %v", filepath.Base(path), err)
			res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		log.Debug(verbose, "Normalized %s (%s -> utf-8)", filepath.Base(path), enc)
		res.Cleaned = append(res.Cleaned, cleanPath)
	}

	log.Info("Normalized %d files into %s (%d skipped)", len(res.Cleaned), cleanDir, len(res.Skipped))
	return res, nil
}
