package rule

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/rule/transform"
)

// Severity ranks findings. Off disables a rule entirely.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityHint
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = map[string]Severity{
	"off":     SeverityOff,
	"hint":    SeverityHint,
	"info":    SeverityInfo,
	"warning": SeverityWarning,
	"error":   SeverityError,
}

// ParseSeverity resolves a severity name. Empty means hint.
func ParseSeverity(name string) (Severity, error) {
	if name == "" {
		return SeverityHint, nil
	}

	if s, ok := severityNames[name]; ok {
		return s, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Config is one rule document as written in a rule file.
type Config struct {
	ID          string                       `yaml:"id"`
	Language    string                       `yaml:"language"`
	Message     string                       `yaml:"message"`
	Severity    string                       `yaml:"severity"`
	Rule        SerializableRule             `yaml:"rule"`
	Constraints map[string]SerializableRule  `yaml:"constraints"`
	Transform   map[string]SerializableTrans `yaml:"transform"`
	Fix         string                       `yaml:"fix"`
	Utils       map[string]SerializableRule  `yaml:"utils"`
}

// Compiled is a loaded rule ready for scanning.
type Compiled struct {
	ID       string
	Message  string
	Severity Severity
	Fix      string
	Core     *Core
}

// ParseConfig decodes and validates one YAML rule document.
func ParseConfig(doc []byte) (*Config, error) {
	if err := validateRuleDoc(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleDoc, err)
	}

	return &cfg, nil
}

// Compile builds the rule, registers its utils, checks constraints and
// transforms, and verifies every referent resolves. Local utils are
// registered under the given registry and must not collide with earlier
// entries.
func (c *Config) Compile(lang *language.Language, reg *Registry) (*Compiled, error) {
	severity, err := ParseSeverity(c.Severity)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", c.ID, err)
	}

	for name, doc := range c.Utils {
		util, err := doc.Build(lang, reg)
		if err != nil {
			return nil, fmt.Errorf("rule %s: util %s: %w", c.ID, name, err)
		}

		if err := reg.InsertLocal(name, util); err != nil {
			return nil, fmt.Errorf("rule %s: %w", c.ID, err)
		}
	}

	if !c.Rule.HasPositive() {
		return nil, fmt.Errorf("rule %s: %w", c.ID, ErrMissingPositiveMatcher)
	}

	var core Rule

	if severity == SeverityOff {
		core = NewAtomic(match.MatchNone{})
	} else {
		core, err = c.Rule.Build(lang, reg)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", c.ID, err)
		}
	}

	if err := verifyReferents(core, reg); err != nil {
		return nil, fmt.Errorf("rule %s: %w", c.ID, err)
	}

	opts := []CoreOption{WithUtils(reg)}

	if len(c.Constraints) > 0 {
		constraints := map[string]match.Matcher{}

		for name, doc := range c.Constraints {
			m, err := doc.Build(lang, reg)
			if err != nil {
				return nil, fmt.Errorf("rule %s: constraint %s: %w", c.ID, name, err)
			}

			constraints[name] = m
		}

		opts = append(opts, WithConstraints(constraints))
	}

	if len(c.Transform) > 0 {
		pipeline := transform.NewPipeline()

		for name, st := range c.Transform {
			if err := pipeline.Add(name, st.trans); err != nil {
				return nil, fmt.Errorf("rule %s: %w", c.ID, err)
			}
		}

		opts = append(opts, WithTransforms(pipeline))
	}

	compiled, err := NewCore(core, opts...)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", c.ID, err)
	}

	return &Compiled{
		ID:       c.ID,
		Message:  c.Message,
		Severity: severity,
		Fix:      c.Fix,
		Core:     compiled,
	}, nil
}

func verifyReferents(r Rule, reg *Registry) error {
	if ref, ok := r.(*Referent); ok {
		return reg.Verify(ref.ID())
	}

	for _, child := range r.Children() {
		if err := verifyReferents(child, reg); err != nil {
			return err
		}
	}

	return nil
}

// ruleDocSchema validates the outer shape of a rule document before
// decoding. Rule bodies are checked structurally during Build.
const ruleDocSchema = `{
  "type": "object",
  "required": ["id", "rule"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "language": {"type": "string"},
    "message": {"type": "string"},
    "severity": {"enum": ["off", "hint", "info", "warning", "error"]},
    "rule": {"type": "object", "minProperties": 1},
    "constraints": {"type": "object"},
    "transform": {"type": "object"},
    "fix": {"type": "string"},
    "utils": {"type": "object"}
  },
  "additionalProperties": false
}`

func validateRuleDoc(doc []byte) error {
	var raw any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleDoc, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(ruleDocSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleDoc, err)
	}

	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidRuleDoc, errs[0])
		}

		return ErrInvalidRuleDoc
	}

	return nil
}
