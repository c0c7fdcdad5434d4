package history

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lox/cambio/internal/game"
)

// Extension is the file extension of saved records.
const Extension = ".toml"

// Encode writes the record to w in TOML.
func Encode(w io.Writer, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("history: record is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(rec)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a record. Unknown keys are rejected so typos in hand-edited
// files do not pass silently.
func Decode(r io.Reader) (*Record, error) {
	rec := &Record{Caller: -1}
	md, err := toml.NewDecoder(r).Decode(rec)
	if err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("history: unknown keys: %s", strings.Join(keys, ", "))
	}
	return rec, nil
}

// Save writes rec to dir/<id>.toml atomically and returns the path.
func Save(dir string, rec *Record) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("history: record has no id")
	}
	data, err := EncodeToBytes(rec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("history: create dir: %w", err)
	}
	path := filepath.Join(dir, rec.ID+Extension)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a record from disk.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Verify replays rec from its seed and checks that every step was taken by
// the recorded seat and that the final scores, payoffs and outcome match.
// It returns the replayed game.
func Verify(rec *Record) (*game.Game, error) {
	seats := make([]int, len(rec.Actions))
	actions := make([]game.Action, len(rec.Actions))
	for i, s := range rec.Actions {
		seat, a, err := ParseAction(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		seats[i], actions[i] = seat, a
	}

	g, err := game.Replay(rec.Seed, rec.Players, actions)
	if err != nil {
		return g, err
	}

	for i, step := range g.Log() {
		if step.Player != seats[i] {
			return g, fmt.Errorf("step %d: recorded seat p%d, replay has p%d", i, seats[i]+1, step.Player+1)
		}
	}
	if !g.IsOver() {
		return g, fmt.Errorf("replay did not finish after %d steps", len(actions))
	}
	if got := g.Outcome().String(); got != rec.Outcome {
		return g, fmt.Errorf("outcome mismatch: recorded %s, replay %s", rec.Outcome, got)
	}
	if got := g.Scores(); !slices.Equal(got, rec.Scores) {
		return g, fmt.Errorf("scores mismatch: recorded %v, replay %v", rec.Scores, got)
	}
	if got := g.Payoffs(); !slices.Equal(got, rec.Payoffs) {
		return g, fmt.Errorf("payoffs mismatch: recorded %v, replay %v", rec.Payoffs, got)
	}
	return g, nil
}
