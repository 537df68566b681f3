// Package course loads per-course YAML configuration: spreadsheet layout,
// GitHub organization, and the lab definitions that drive grading.
package course

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PenaltyStrategy selects how lateness converts into penalty points.
type PenaltyStrategy string

const (
	PenaltyWeekly    PenaltyStrategy = "weekly"    // One point per started week late.
	PenaltyDaily     PenaltyStrategy = "daily"     // One point per started day late.
	PenaltyImmediate PenaltyStrategy = "immediate" // Maximum penalty right after the deadline.
	PenaltyNone      PenaltyStrategy = "none"      // Never penalize.
)

// Course is one course's immutable configuration. Loaded once, passed by
// value into grading; never mutated afterwards.
type Course struct {
	Name   string               `yaml:"name"`
	GitHub GitHubConfig         `yaml:"github"`
	Google GoogleConfig         `yaml:"google"`
	Labs   map[string]LabConfig `yaml:"labs"`
}

// GitHubConfig identifies where student repositories live.
type GitHubConfig struct {
	Organization string `yaml:"organization"`
}

// GoogleConfig describes the gradebook spreadsheet layout.
type GoogleConfig struct {
	Spreadsheet      string `yaml:"spreadsheet"`
	GitHubColumn     string `yaml:"github-column"`     // Header of the login column. Default "GitHub".
	StartRow         int    `yaml:"start-row"`         // First data row. Default 3 (two header rows).
	DeadlineRow      int    `yaml:"deadline-row"`      // Row holding per-lab deadlines. Default 2.
	LabColumnOffset  int    `yaml:"lab-column-offset"` // Fallback column math when the header lookup misses.
	DecimalSeparator string `yaml:"decimal-separator"` // Separator used in score cells. Default ",".
}

// LabConfig identifies one lab variant: required files, protected paths,
// relevant CI jobs, variant bounds, penalty policy, and score patterns.
type LabConfig struct {
	ShortName     string        `yaml:"-"` // Map key; set during load.
	GitHubPrefix  string        `yaml:"github-prefix"`
	Files         []string      `yaml:"files"`
	Protected     []string      `yaml:"protected"`
	CI            CIConfig      `yaml:"ci"`
	Variant       VariantConfig `yaml:"variant"`
	Penalty       PenaltyConfig `yaml:"penalty"`
	ScorePatterns []string      `yaml:"score-patterns"`
}

// CIConfig lists the check-run names that count toward the grade.
// An empty list means "use the default autograding job names".
type CIConfig struct {
	Jobs []string `yaml:"jobs"`
}

// VariantConfig bounds the per-student assignment variant number.
type VariantConfig struct {
	Max    int  `yaml:"max"`
	Shift  int  `yaml:"shift"`
	Ignore bool `yaml:"ignore"`
}

// Enabled reports whether variant verification applies to this lab.
func (v VariantConfig) Enabled() bool {
	return !v.Ignore && v.Max > 0
}

// PenaltyConfig is the lateness policy for one lab.
type PenaltyConfig struct {
	Max      int             `yaml:"max"`
	Strategy PenaltyStrategy `yaml:"strategy"`
}

// file is the top-level YAML document shape.
type file struct {
	Course Course `yaml:"course"`
}

// Load reads and validates a single course YAML file.
func Load(path string) (*Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading course file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing course file %s: %w", filepath.Base(path), err)
	}

	c := f.Course
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("course file %s: %w", filepath.Base(path), err)
	}

	return &c, nil
}

// LoadDir loads every *.yaml file in dir, sorted by filename. Course IDs used
// by the HTTP layer are 1-based positions in this order.
func LoadDir(dir string) ([]*Course, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading courses directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	courses := make([]*Course, 0, len(paths))
	for _, p := range paths {
		c, err := Load(p)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	return courses, nil
}

// Lab returns the lab configuration for the given short name.
func (c *Course) Lab(shortName string) (LabConfig, bool) {
	lab, ok := c.Labs[shortName]
	return lab, ok
}

// applyDefaults fills layout fields the YAML may omit.
func applyDefaults(c *Course) {
	if c.Google.GitHubColumn == "" {
		c.Google.GitHubColumn = "GitHub"
	}
	if c.Google.StartRow == 0 {
		c.Google.StartRow = 3
	}
	if c.Google.DeadlineRow == 0 {
		c.Google.DeadlineRow = 2
	}
	if c.Google.DecimalSeparator == "" {
		c.Google.DecimalSeparator = ","
	}

	for name, lab := range c.Labs {
		lab.ShortName = name
		if lab.Penalty.Strategy == "" {
			lab.Penalty.Strategy = PenaltyWeekly
		}
		c.Labs[name] = lab
	}
}

// Validate checks the loaded configuration for the mistakes that would
// otherwise surface mid-grading. Malformed config is fatal at load time.
func (c *Course) Validate() error {
	if c.GitHub.Organization == "" {
		return fmt.Errorf("github.organization is required")
	}
	if c.Google.Spreadsheet == "" {
		return fmt.Errorf("google.spreadsheet is required")
	}
	if sep := c.Google.DecimalSeparator; sep != "." && sep != "," {
		return fmt.Errorf("google.decimal-separator must be %q or %q, got %q", ".", ",", sep)
	}

	for name, lab := range c.Labs {
		if lab.GitHubPrefix == "" {
			return fmt.Errorf("lab %s: github-prefix is required", name)
		}
		if !lab.Variant.Ignore && lab.Variant.Max < 0 {
			return fmt.Errorf("lab %s: variant.max must not be negative, got %d", name, lab.Variant.Max)
		}
		if lab.Penalty.Max < 0 {
			return fmt.Errorf("lab %s: penalty.max must not be negative, got %d", name, lab.Penalty.Max)
		}
		switch lab.Penalty.Strategy {
		case PenaltyWeekly, PenaltyDaily, PenaltyImmediate, PenaltyNone:
		default:
			return fmt.Errorf("lab %s: unknown penalty.strategy %q", name, lab.Penalty.Strategy)
		}
		for _, p := range lab.ScorePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("lab %s: invalid score pattern %q: %w", name, p, err)
			}
			// The first capture group carries the score value.
			if re.NumSubexp() < 1 {
				return fmt.Errorf("lab %s: score pattern %q has no capture group", name, p)
			}
		}
	}

	return nil
}

// RepoName builds the student repository name from the lab prefix and the
// student's GitHub login.
func (l LabConfig) RepoName(login string) string {
	return l.GitHubPrefix + "-" + login
}
