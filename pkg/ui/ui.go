// Package ui is the terminal front end of a session: it renders the lot list
// and the selection with pterm and asks the operator for confirmation.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/inventory"
	"github.com/walteh/lotmig/pkg/selection"
	"github.com/walteh/lotmig/pkg/session"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a terminal
var ErrNotInteractive = errors.Base("stdin is not a terminal")

// 📢 UserLogger provides user-friendly feedback and implements session.Renderer
type UserLogger struct {
	log   zerolog.Logger // for debug/error logging
	out   io.Writer
	title string

	// isInteractive reports whether prompts can be shown
	isInteractive func() bool
}

var _ session.Renderer = (*UserLogger)(nil)

// 🎯 NewUserLogger creates a new user logger writing to out (stdout when nil)
func NewUserLogger(ctx context.Context, title string, out io.Writer) *UserLogger {
	if out == nil {
		out = os.Stdout
	}
	return &UserLogger{
		log:   *zerolog.Ctx(ctx),
		out:   out,
		title: title,
		isInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// 🏷️ Header prints the configured title
func (u *UserLogger) Header() {
	pterm.Fprintln(u.out, pterm.DefaultSection.Sprint(u.title))
}

// 📋 RenderCandidates prints the unprocessed lots as a table
func (u *UserLogger) RenderCandidates(candidates []inventory.Candidate) {
	if len(candidates) == 0 {
		pterm.Info.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "📦"}).Println("No unprocessed lots")
		return
	}

	data := pterm.TableData{{"#", "Lot", "Status"}}
	for i, c := range candidates {
		data = append(data, []string{strconv.Itoa(i + 1), c.ID, c.Status.String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(u.out).Render(); err != nil {
		u.log.Error().Err(err).Msg("rendering lot table")
	}
}

// 🗂️ RenderSelection prints the current selection; an empty selection prints nothing
func (u *UserLogger) RenderSelection(entries []selection.Entry) {
	if len(entries) == 0 {
		return
	}
	ids := selection.IDs(entries)
	pterm.Info.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "🗂️"}).
		Printfln("Selected %d: %s", len(ids), strings.Join(ids, ", "))
	u.log.Debug().Strs("selection", ids).Msg("selection changed")
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	switch {
	case valid:
		pterm.Success.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
	case err != nil:
		pterm.Error.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.WithWriter(u.out).Println(err)
		u.log.Error().Err(err).Msg(description)
	default:
		pterm.Warning.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
		u.log.Warn().Msg(description)
	}
}

// ✋ Confirm asks the operator to go ahead with n lots. assumeYes skips the
// prompt; without it a non-terminal stdin is ErrNotInteractive.
func (u *UserLogger) Confirm(n int, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !u.isInteractive() {
		return false, errors.Errorf("confirming batch (use --yes): %w", ErrNotInteractive)
	}

	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(fmt.Sprintf("Migrate %d lot(s)? Processed lots are never migrated again", n)).
		Show()
	if err != nil {
		return false, errors.Errorf("showing confirmation: %w", err)
	}
	return ok, nil
}

// ☑️ ChooseLots lets the operator pick lots interactively
func (u *UserLogger) ChooseLots(candidates []inventory.Candidate) ([]string, error) {
	if !u.isInteractive() {
		return nil, errors.Errorf("choosing lots: %w", ErrNotInteractive)
	}

	options := make([]string, 0, len(candidates))
	for _, c := range candidates {
		options = append(options, c.ID)
	}

	chosen, err := pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithDefaultText("Select lots to migrate").
		Show()
	if err != nil {
		return nil, errors.Errorf("showing lot selection: %w", err)
	}
	return chosen, nil
}

// 📒 RenderLedger prints the processed lots in append order
func (u *UserLogger) RenderLedger(entries []string) {
	if len(entries) == 0 {
		pterm.Info.WithWriter(u.out).WithPrefix(pterm.Prefix{Text: "📒"}).Println("No processed lots")
		return
	}
	data := pterm.TableData{{"#", "Lot"}}
	for i, id := range entries {
		data = append(data, []string{strconv.Itoa(i + 1), id})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(u.out).Render(); err != nil {
		u.log.Error().Err(err).Msg("rendering ledger table")
	}
}
