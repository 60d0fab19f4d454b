package meta

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/coregx/lexvm/input"
	"github.com/coregx/lexvm/nfa"
	"github.com/coregx/lexvm/prefilter"
)

// InvalidToken is the type of tokens covering input no rule matched. It is
// only produced when Config.Recover is set.
const InvalidToken = -3

var (
	// ErrNilProgram is returned by NewEngine when given no program.
	ErrNilProgram = errors.New("lexvm: nil program")

	// ErrNoToken means no rule matched at the error offset.
	ErrNoToken = errors.New("no rule matches")

	// ErrEmptyToken means the winning rule accepted without consuming input.
	ErrEmptyToken = errors.New("rule accepted an empty token")
)

// Token is one classified run of input. Start and End are byte offsets into
// the tokenized data, End exclusive.
type Token struct {
	Type  int
	Start int
	End   int
	Text  string
}

// IsInvalid reports whether t covers unmatched input.
func (t Token) IsInvalid() bool {
	return t.Type == InvalidToken
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	if t.IsInvalid() {
		return fmt.Sprintf("invalid[%d:%d] %q", t.Start, t.End, t.Text)
	}
	return fmt.Sprintf("%d[%d:%d] %q", t.Type, t.Start, t.End, t.Text)
}

// LexError reports where tokenization stopped.
type LexError struct {
	Offset int // byte offset of the failing position
	Err    error
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("lexvm: offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *LexError) Unwrap() error {
	return e.Err
}

// Tokenize splits data into tokens using the configured rules.
//
// Matching restarts right after each token. When no rule matches, or the
// winning rule accepts without consuming anything, Tokenize stops with a
// *LexError carrying the byte offset, and returns the tokens found so far.
// With Config.Recover it instead emits an InvalidToken over the unmatched
// bytes and resumes at the next prefilter candidate, or at the next
// character when there is no prefilter. Adjacent invalid runs are merged.
//
// Interpreter errors, such as an exceeded step bound, always stop
// tokenization.
//
//nolint:gocognit // recovery and prefilter bookkeeping share the loop
func (e *Engine) Tokenize(data []byte) ([]Token, error) {
	cur := input.NewBytes(data)
	state := e.statePool.get()
	defer e.statePool.put(state)

	var tracker *prefilter.Tracker
	if e.config.Recover {
		tracker = prefilter.NewTracker(e.prefilter)
	}
	defer func() {
		if tracker == nil {
			return
		}
		atomic.AddUint64(&e.stats.PrefilterBytes, tracker.Stats().Skipped)
		if !tracker.IsActive() {
			atomic.AddUint64(&e.stats.PrefilterAbandoned, 1)
		}
	}()

	var tokens []Token
	onCandidate := false
	for {
		startPos, startOff := cur.Position(), cur.Offset()
		res, err := e.matchStarts(state, cur, e.starts)
		if err != nil {
			return tokens, &LexError{Offset: startOff, Err: err}
		}
		if res == nfa.EndOfInput {
			return tokens, nil
		}

		if res.IsToken() && cur.Position() > startPos {
			end := cur.Offset()
			tokens = append(tokens, Token{
				Type:  int(res),
				Start: startOff,
				End:   end,
				Text:  string(data[startOff:end]),
			})
			atomic.AddUint64(&e.stats.Tokens, 1)
			if onCandidate {
				tracker.Confirm()
				onCandidate = false
			}
			continue
		}

		atomic.AddUint64(&e.stats.LexErrors, 1)
		cause := ErrNoToken
		if res.IsToken() {
			cause = ErrEmptyToken
		}
		if !e.config.Recover {
			return tokens, &LexError{Offset: startOff, Err: cause}
		}

		onCandidate = e.skip(cur, data, tracker)
		tokens = appendInvalid(tokens, data, startOff, cur.Offset())
	}
}

// skip moves cur past an unmatched position: at least one character, then on
// to the next prefilter candidate. It reports whether cur stopped on a
// candidate.
func (e *Engine) skip(cur *input.RuneCursor, data []byte, tracker *prefilter.Tracker) bool {
	cur.Advance()
	if !tracker.IsActive() || cur.Peek() == input.EOF {
		return false
	}

	next := tracker.Next(data, cur.Offset())
	if next < 0 {
		if !tracker.IsActive() {
			// Retired just now: step one character at a time from here.
			return false
		}
		// An active prefilter reports every position a token can start
		// at, so the rest of the input is unmatched.
		cur.SkipTo(len(data))
		return false
	}
	cur.SkipTo(next)
	atomic.AddUint64(&e.stats.PrefilterSkips, 1)
	return true
}

// appendInvalid records data[start:end] as unmatched, extending the previous
// token when it is an adjacent invalid run.
func appendInvalid(tokens []Token, data []byte, start, end int) []Token {
	if n := len(tokens); n > 0 && tokens[n-1].IsInvalid() && tokens[n-1].End == start {
		last := &tokens[n-1]
		last.End = end
		last.Text = string(data[last.Start:end])
		return tokens
	}
	return append(tokens, Token{
		Type:  InvalidToken,
		Start: start,
		End:   end,
		Text:  string(data[start:end]),
	})
}

// TokenizeString is Tokenize for a string.
func (e *Engine) TokenizeString(s string) ([]Token, error) {
	return e.Tokenize([]byte(s))
}
