// Package meta implements the lexer engine that sits on top of the
// interpreters.
//
// The engine coordinates three pieces:
//   - Interpreter: one of the three nfa matchers, chosen by Config.Strategy
//   - Prefilter: literal-based candidate finding used during error recovery
//   - Tokenizer: the loop that turns a whole input into tokens
//
// Rule selection follows the strategy: the Thompson simulator runs every
// rule at once and keeps the longest token, while the backtracking
// strategies try the rules in address order and keep the first token found.
package meta

// Config controls engine behavior.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.Strategy = meta.UseBacktrack // ordered choice instead of longest match
//	config.Recover = true
//	engine, err := meta.NewEngine(prog, config)
type Config struct {
	// Strategy selects the interpreter.
	// Default: UseThompson
	Strategy Strategy

	// MaxSteps bounds the instructions a single token match may execute.
	// Zero means no bound.
	// Default: 0
	MaxSteps int

	// Rules names the rules to run. Nil runs every rule in the program.
	// Default: nil
	Rules []string

	// Recover makes Tokenize report unmatched input as InvalidToken tokens
	// and continue, instead of stopping with a LexError.
	// Default: false
	Recover bool

	// EnablePrefilter enables literal-based skipping during recovery.
	// When false, recovery resumes at the next character.
	// Default: true
	EnablePrefilter bool

	// MaxLiterals limits the number of prefixes extracted for the prefilter.
	// Default: 256
	MaxLiterals int

	// MaxLiteralLen limits the length of each prefix in bytes.
	// Default: 16
	MaxLiteralLen int

	// MaxClassSize is the largest range expanded into one prefix per
	// character. Rules starting with a wider range disable the prefilter.
	// Default: 128
	MaxClassSize int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:        UseThompson,
		EnablePrefilter: true,
		MaxLiterals:     256,
		MaxLiteralLen:   16,
		MaxClassSize:    128,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of range.
//
// Valid ranges:
//   - MaxSteps: 0 or more
//   - MaxLiterals: 1 to 1,000
//   - MaxLiteralLen: 1 to 64
//   - MaxClassSize: 1 to 1,024
//
// Rule names must be non-empty and distinct. Whether they exist in a
// program is checked by NewEngine.
func (c Config) Validate() error {
	if !c.Strategy.valid() {
		return &ConfigError{
			Field:   "Strategy",
			Message: "unknown strategy " + c.Strategy.String(),
		}
	}

	if c.MaxSteps < 0 {
		return &ConfigError{
			Field:   "MaxSteps",
			Message: "must not be negative",
		}
	}

	seen := make(map[string]bool, len(c.Rules))
	for _, name := range c.Rules {
		if name == "" {
			return &ConfigError{
				Field:   "Rules",
				Message: "empty rule name",
			}
		}
		if seen[name] {
			return &ConfigError{
				Field:   "Rules",
				Message: "duplicate rule " + name,
			}
		}
		seen[name] = true
	}

	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{
				Field:   "MaxLiterals",
				Message: "must be between 1 and 1,000",
			}
		}
		if c.MaxLiteralLen < 1 || c.MaxLiteralLen > 64 {
			return &ConfigError{
				Field:   "MaxLiteralLen",
				Message: "must be between 1 and 64",
			}
		}
		if c.MaxClassSize < 1 || c.MaxClassSize > 1_024 {
			return &ConfigError{
				Field:   "MaxClassSize",
				Message: "must be between 1 and 1,024",
			}
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "lexvm: invalid config: " + e.Field + ": " + e.Message
}
