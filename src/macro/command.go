package macro

import (
	"fmt"

	"kmmacro/src/input"
	"kmmacro/src/timing"
)

var (
	keySlash     = input.MustKey("SLASH")
	keyBackspace = input.MustKey("BACKSPACE")
	keyV         = input.MustKey("V")
	keyEnter     = input.MustKey("ENTER")
)

// command types a chat command by pasting it: it opens the input line with
// "/", clears what that typed, pastes the text and submits it. The busy and
// input probes, when the macro defines them, gate each phase.
func (r *Runner) command(y timing.Yield, a action) error {
	r.printf("issue command %q", a.text)
	s, kb := r.env.Sched, r.env.Keyboard
	hasBusy, hasInput := r.prog.hasProbe(BusyProbe), r.prog.hasProbe(InputProbe)

	for _, label := range []string{BusyProbe, InputProbe} {
		if !r.prog.hasProbe(label) {
			continue
		}
		v, err := r.readFlag(label)
		if err != nil {
			return err
		}
		if v {
			return &RequirementError{Step: a.index, Flag: label, Expected: false}
		}
	}

	if err := r.env.Clipboard.Write(a.text); err != nil {
		return fmt.Errorf("step %d: copy command: %w", a.index, err)
	}
	if err := kb.Press(&keySlash, input.None); err != nil {
		return err
	}
	if hasInput {
		if err := timing.UntilTrue(s, y, a.timeout, InputProbe, func() (bool, error) {
			return r.readFlag(InputProbe)
		}); err != nil {
			return err
		}
	}
	if err := s.SleepEnsure(y); err != nil {
		return err
	}
	// Twice, just in case.
	for i := 0; i < 2; i++ {
		if err := kb.Press(&keyBackspace, input.None); err != nil {
			return err
		}
		if err := s.SleepMoment(y); err != nil {
			return err
		}
	}
	if err := kb.Press(&keyV, input.Ctrl); err != nil {
		return err
	}
	if err := s.SleepEnsure(y); err != nil {
		return err
	}
	if err := kb.Press(&keyEnter, input.None); err != nil {
		return err
	}

	if hasBusy || hasInput {
		var labels []string
		if hasBusy {
			labels = append(labels, BusyProbe)
		}
		if hasInput {
			labels = append(labels, InputProbe)
		}
		if err := timing.While(s, y, a.timeout, "busy or input", func() (bool, error) {
			values, err := r.readFlags(labels...)
			if err != nil {
				return false, err
			}
			for _, v := range values {
				if v {
					return true, nil
				}
			}
			return false, nil
		}); err != nil {
			return err
		}
	}

	// Leave no trace of the command on the clipboard.
	noise := fmt.Sprintf("%d", int64(s.Uniform()*1e12))
	if err := r.env.Clipboard.Write(noise); err != nil {
		return fmt.Errorf("step %d: overwrite clipboard: %w", a.index, err)
	}
	return nil
}
