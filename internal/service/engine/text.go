package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const maxOverrideMinutes = 24 * 60

// A leading "[N]" sets the duration to N minutes regardless of the
// selected one.
var durationOverride = regexp.MustCompile(`^\[(\d+)\]\s*`)

// parseInput returns the text to store and the duration to count down.
func (e *Engine) parseInput(raw string, durationMinutes int) (string, time.Duration, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", 0, fmt.Errorf("%w: reminder text is empty", domain.ErrInvalidInput)
	}

	if m := durationOverride.FindStringSubmatch(text); m != nil {
		minutes, err := strconv.Atoi(m[1])
		if err != nil || minutes > maxOverrideMinutes {
			return "", 0, fmt.Errorf("%w: duration override %q out of range", domain.ErrInvalidInput, m[1])
		}
		text = strings.TrimSpace(text[len(m[0]):])
		if text == "" {
			return "", 0, fmt.Errorf("%w: reminder text is empty", domain.ErrInvalidInput)
		}
		return text, time.Duration(minutes) * time.Minute, nil
	}

	if durationMinutes < e.opts.MinDurationMinutes || durationMinutes > e.opts.MaxDurationMinutes {
		return "", 0, fmt.Errorf("%w: duration %d minutes outside %d..%d",
			domain.ErrInvalidInput, durationMinutes, e.opts.MinDurationMinutes, e.opts.MaxDurationMinutes)
	}

	return text, time.Duration(durationMinutes) * time.Minute, nil
}

const idModulus = math.MaxInt32

// allocateID derives an id from the creation instant, kept strictly above
// the last id handed out in this run and clear of ids already stored.
// Callers hold the serial lock.
func (e *Engine) allocateID(now time.Time) int32 {
	candidate := now.UnixMilli() % idModulus
	if candidate <= int64(e.lastID) {
		candidate = int64(e.lastID) + 1
	}

	for {
		if candidate <= 0 || candidate >= idModulus {
			candidate = 1
		}
		if !e.reminders.Has(int32(candidate)) {
			break
		}
		candidate++
	}

	e.lastID = int32(candidate)
	return e.lastID
}
