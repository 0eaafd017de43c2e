package status

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Formatter defines how batch outcomes and progress are phrased
type Formatter interface {
	// FormatMigrated formats a successfully migrated lot
	FormatMigrated(lot string, files int) string

	// FormatFailed formats a lot whose migration failed
	FormatFailed(lot string, err error) string

	// FormatSkipped formats a lot that was already in the ledger
	FormatSkipped(lot string) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatMigrated formats a migrated lot with emoji
func (f *DefaultFormatter) FormatMigrated(lot string, files int) string {
	return fmt.Sprintf("✨ Migrated %s (%d files)", lot, files)
}

// FormatFailed formats a failed lot with emoji
func (f *DefaultFormatter) FormatFailed(lot string, err error) string {
	if err == nil {
		return fmt.Sprintf("❌ Failed %s", lot)
	}
	return fmt.Sprintf("❌ Failed %s: %v", lot, err)
}

// FormatSkipped formats a skipped lot with emoji
func (f *DefaultFormatter) FormatSkipped(lot string) string {
	return fmt.Sprintf("👍 Skipped %s (already processed)", lot)
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// 📈 Progress logs how far a batch has come
type Progress struct {
	formatter Formatter

	mu    sync.Mutex
	total int
}

// NewProgress creates a progress tracker; a nil formatter uses DefaultFormatter
func NewProgress(formatter Formatter) *Progress {
	if formatter == nil {
		formatter = NewDefaultFormatter()
	}
	return &Progress{formatter: formatter}
}

// Start resets the tracker for a batch of total lots.
func (p *Progress) Start(logger *zerolog.Logger, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	logger.Info().Int("total", total).Msg(p.formatter.FormatProgress(0, total))
}

// Update records that processed lots are done.
func (p *Progress) Update(logger *zerolog.Logger, processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger.Info().
		Int("processed", processed).
		Int("total", p.total).
		Msg(p.formatter.FormatProgress(processed, p.total))
}
