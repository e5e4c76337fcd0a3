// Package config holds the immutable settings shared by every stage of the
// contact-map pipeline. A Config is built once (defaults, then YAML, then
// environment) and passed by value; nothing in the pipeline reads globals.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Chain policies.
const (
	ChainsAll   = "all"   // concatenate every chain of the first model
	ChainsFirst = "first" // first chain with a qualifying residue only
)

// EnvPrefix prefixes every environment override key.
const EnvPrefix = "CONTACTMAP_"

// Scoring is the local-alignment scheme. GapOpen is the score of the first
// gap position; each further position in the same gap scores GapExtend.
type Scoring struct {
	Match     float64 `yaml:"match" json:"match"`
	Mismatch  float64 `yaml:"mismatch" json:"mismatch"`
	GapOpen   float64 `yaml:"gap_open" json:"gap_open"`
	GapExtend float64 `yaml:"gap_extend" json:"gap_extend"`
}

// Config controls structure extraction, alignment and map construction.
type Config struct {
	ContactThreshold float64 `yaml:"contact_threshold" json:"contact_threshold"`
	TargetSize       int     `yaml:"target_size" json:"target_size"`
	MinPoints        int     `yaml:"min_points" json:"min_points"`
	BinarizeCutoff   float64 `yaml:"binarize_cutoff" json:"binarize_cutoff"`
	Chains           string  `yaml:"chains" json:"chains"`
	Scoring          Scoring `yaml:"scoring" json:"scoring"`
}

// Default returns the reference settings: 8.0 distance units, 128x128 maps,
// at least 10 aligned residues, and the +2/-1/-0.5/-0.1 alignment scheme.
func Default() Config {
	return Config{
		ContactThreshold: 8.0,
		TargetSize:       128,
		MinPoints:        10,
		BinarizeCutoff:   0.5,
		Chains:           ChainsAll,
		Scoring: Scoring{
			Match:     2,
			Mismatch:  -1,
			GapOpen:   -0.5,
			GapExtend: -0.1,
		},
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	c.Chains = strings.ToLower(strings.TrimSpace(c.Chains))
	return c, nil
}

// ApplyEnv overlays CONTACTMAP_* keys from the given .env files and then
// from the process environment, which wins over the files. Missing .env
// files are an error only when named explicitly.
func ApplyEnv(c Config, envFiles ...string) (Config, error) {
	vals := map[string]string{}
	if len(envFiles) > 0 {
		m, err := godotenv.Read(envFiles...)
		if err != nil {
			return c, fmt.Errorf("env: %w", err)
		}
		vals = m
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			vals[k] = v
		}
	}
	return applyMap(c, vals)
}

// Lookup returns EnvPrefix+name from the process environment, falling back
// to the given .env files. Unreadable files are ignored.
func Lookup(name string, envFiles ...string) string {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		return v
	}
	if len(envFiles) == 0 {
		return ""
	}
	m, err := godotenv.Read(envFiles...)
	if err != nil {
		return ""
	}
	return m[EnvPrefix+name]
}

func applyMap(c Config, vals map[string]string) (Config, error) {
	floats := map[string]*float64{
		"THRESHOLD":       &c.ContactThreshold,
		"BINARIZE_CUTOFF": &c.BinarizeCutoff,
		"MATCH":           &c.Scoring.Match,
		"MISMATCH":        &c.Scoring.Mismatch,
		"GAP_OPEN":        &c.Scoring.GapOpen,
		"GAP_EXTEND":      &c.Scoring.GapExtend,
	}
	ints := map[string]*int{
		"TARGET_SIZE": &c.TargetSize,
		"MIN_POINTS":  &c.MinPoints,
	}
	for k, v := range vals {
		name, ok := strings.CutPrefix(k, EnvPrefix)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if dst, ok := floats[name]; ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return c, fmt.Errorf("env %s: %w", k, err)
			}
			*dst = f
			continue
		}
		if dst, ok := ints[name]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return c, fmt.Errorf("env %s: %w", k, err)
			}
			*dst = n
			continue
		}
		if name == "CHAINS" {
			c.Chains = strings.ToLower(v)
		}
	}
	return c, nil
}

// Validate reports the first setting that would make the pipeline
// meaningless.
func (c Config) Validate() error {
	switch {
	case c.ContactThreshold <= 0:
		return errors.New("contact threshold must be > 0")
	case c.TargetSize < 1:
		return errors.New("target size must be ≥ 1")
	case c.MinPoints < 1:
		return errors.New("min points must be ≥ 1")
	case c.BinarizeCutoff <= 0 || c.BinarizeCutoff >= 1:
		return errors.New("binarize cutoff must be in (0,1)")
	case c.Scoring.Match <= 0:
		return errors.New("match score must be > 0")
	case c.Scoring.GapOpen > 0 || c.Scoring.GapExtend > 0:
		return errors.New("gap scores must be ≤ 0")
	}
	switch c.Chains {
	case ChainsAll, ChainsFirst:
	default:
		return fmt.Errorf("invalid chain policy %q", c.Chains)
	}
	return nil
}
