package scanner

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/keymap"
)

// Step is one scripted transition. Exactly one of Press and Release is
// set, either as "row,col" or as a key name looked up on the keymap.
type Step struct {
	At      uint32 `yaml:"at"`
	Press   string `yaml:"press,omitempty"`
	Release string `yaml:"release,omitempty"`
}

// Script is a recorded scenario.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`

	// Until is the last cycle time to run. Zero means the time of the last
	// step.
	Until uint32 `yaml:"until,omitempty"`

	// Expect lists the reports the scenario should produce, rendered with
	// hid.Report.String.
	Expect []string `yaml:"expect,omitempty"`
}

// LoadScript reads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	s, err := DecodeScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeScript reads a script from r.
func DecodeScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return &s, nil
}

// End returns the last cycle time the script covers.
func (s *Script) End() uint32 {
	end := s.Until
	for _, st := range s.Steps {
		end = max(end, st.At)
	}
	return end
}

// Check compares produced reports with Expect. A script without
// expectations always passes.
func (s *Script) Check(got []string) error {
	if len(s.Expect) == 0 || slices.Equal(s.Expect, got) {
		return nil
	}
	return fmt.Errorf("%w: %s: want [%s], got [%s]", ErrMismatch, s.Name,
		strings.Join(s.Expect, " | "), strings.Join(got, " | "))
}

// Compile resolves every step against km and returns a replay source.
func (s *Script) Compile(km *keymap.Keymap) (*Replay, error) {
	events := make([]timed, 0, len(s.Steps))
	for i, st := range s.Steps {
		var spec string
		var state key.State
		switch {
		case st.Press != "" && st.Release == "":
			spec, state = st.Press, key.IsPressed
		case st.Release != "" && st.Press == "":
			spec, state = st.Release, key.WasPressed
		default:
			return nil, fmt.Errorf("%w %d: need exactly one of press or release", ErrBadStep, i)
		}
		addr, err := ResolveAddr(km, spec)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		events = append(events, timed{at: st.At, t: input.Transition{Addr: addr, State: state}})
	}
	slices.SortStableFunc(events, func(a, b timed) int {
		return cmp.Compare(a.at, b.at)
	})
	return &Replay{events: events, end: s.End()}, nil
}

// ResolveAddr turns "row,col" or a key name into a matrix address. Key
// names resolve to the lowest address producing that key.
func ResolveAddr(km *keymap.Keymap, spec string) (key.Addr, error) {
	spec = strings.TrimSpace(spec)
	if row, col, ok := strings.Cut(spec, ","); ok && row != "" && col != "" {
		r, rerr := strconv.ParseUint(strings.TrimSpace(row), 10, 8)
		c, cerr := strconv.ParseUint(strings.TrimSpace(col), 10, 8)
		if rerr == nil && cerr == nil {
			addr := km.Matrix.Addr(uint8(r), uint8(c))
			if !addr.IsValid() {
				return key.AddrNone, fmt.Errorf("%w: %s outside %dx%d", ErrBadAddress, spec, km.Matrix.Rows, km.Matrix.Cols)
			}
			return addr, nil
		}
	}

	k, err := key.Parse(spec)
	if err != nil {
		return key.AddrNone, err
	}
	addr, ok := km.Reverse(k)
	if !ok {
		return key.AddrNone, fmt.Errorf("%w: %s", ErrUnmapped, k)
	}
	return addr, nil
}

type timed struct {
	at uint32
	t  input.Transition
}

// Replay is a compiled script. Every transition is returned by the first
// scan at or after its time.
type Replay struct {
	events []timed
	next   int
	end    uint32
}

// Scan implements Source.
func (r *Replay) Scan(now uint32) []input.Transition {
	var out []input.Transition
	for r.next < len(r.events) && r.events[r.next].at <= now {
		out = append(out, r.events[r.next].t)
		r.next++
	}
	return out
}

// Done reports whether every step has been returned and now has reached
// the end of the script.
func (r *Replay) Done(now uint32) bool {
	return r.next == len(r.events) && now >= r.end
}

// End returns the last cycle time the replay covers.
func (r *Replay) End() uint32 {
	return r.end
}

// Remaining returns the number of transitions not yet returned.
func (r *Replay) Remaining() int {
	return len(r.events) - r.next
}
