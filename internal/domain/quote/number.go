package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberScheme selects how quote numbers are generated. A deployment picks
// one scheme and sticks with it; the two are never mixed.
type NumberScheme string

const (
	// SchemeDaily produces QT-YYYYMMDD-NNNN where NNNN is the per-day
	// sequence. The sequence counts existing quotes sharing the day prefix,
	// so assignment must happen inside the store's insert transaction.
	SchemeDaily NumberScheme = "daily"
	// SchemeRandom produces Q-YYYYMMDD-XXXXXXXX with a random suffix.
	SchemeRandom NumberScheme = "random"
)

func (s NumberScheme) Valid() bool {
	return s == SchemeDaily || s == SchemeRandom
}

// DailyNumber formats the daily-sequence quote number for the given day.
func DailyNumber(day time.Time, seq int) string {
	return fmt.Sprintf("QT-%s-%04d", day.Format("20060102"), seq)
}

// DailyPrefix is the shared prefix of all daily-scheme numbers for a day,
// used by stores to count existing quotes.
func DailyPrefix(day time.Time) string {
	return "QT-" + day.Format("20060102") + "-"
}

// RandomNumber formats the random-suffix quote number.
func RandomNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("Q-%s-%s", now.Format("20060102"), suffix)
}
