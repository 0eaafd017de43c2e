package operation

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/lotmig/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ImageSubpath is where the images of a die-group live, relative to the group.
const ImageSubpath = "GoodDieImages/GoodDiceImages"

// 🔧 TransformerOptions configures a Transformer
type TransformerOptions struct {
	// CopyWorkers bounds concurrent file copies within one lot; 1 is sequential
	CopyWorkers int
}

// 🔄 Transformer renames and copies the images of a lot
type Transformer struct {
	runner *copyRunner
}

// 🏭 NewTransformer creates a new transformer with the given options
func NewTransformer(opts TransformerOptions) *Transformer {
	return &Transformer{runner: newCopyRunner(opts.CopyWorkers)}
}

// MigrateResult describes a completed lot migration.
type MigrateResult struct {
	Lot       string
	DieGroups []string
	Files     []string // destination paths, in plan order
}

type plannedCopy struct {
	lot   string
	group string
	src   string
	dst   string
}

func (c plannedCopy) execute() error {
	if err := copyFile(c.src, c.dst); err != nil {
		return &MigrateError{Phase: PhaseCopy, Lot: c.lot, DieGroup: c.group, Path: c.src, Err: err}
	}
	return nil
}

// 🚚 Migrate copies every image of lot into destRoot/lot/<group>/ under its
// derived name, overwriting earlier output. Every group is located and every
// name parsed before anything is written. A lot without die-groups migrates
// zero files.
func (t *Transformer) Migrate(ctx context.Context, sourceRoot, destRoot, lot string) (*MigrateResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("lot", lot).Logger()

	groups, err := listDieGroups(filepath.Join(sourceRoot, lot), lot)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		logger.Warn().Msg("lot has no die-groups")
	}

	var plan []plannedCopy
	for _, group := range groups {
		copies, err := planGroup(sourceRoot, destRoot, lot, group)
		if err != nil {
			return nil, err
		}
		plan = append(plan, copies...)
	}

	logger.Debug().Int("groups", len(groups)).Int("files", len(plan)).Msg("migration planned")

	// temp files of an interrupted earlier run
	for _, group := range groups {
		dir := filepath.Join(destRoot, lot, group)
		removed, err := removeStaleTemps(dir)
		if err != nil {
			return nil, &MigrateError{Phase: PhaseCopy, Lot: lot, DieGroup: group, Path: dir, Err: err}
		}
		if removed > 0 {
			logger.Info().Str("group", group).Int("removed", removed).Msg("removed stale temp files")
		}
	}

	if err := t.runner.Run(ctx, plan); err != nil {
		return nil, err
	}

	result := &MigrateResult{Lot: lot, DieGroups: groups, Files: make([]string, 0, len(plan))}
	for _, c := range plan {
		result.Files = append(result.Files, c.dst)
	}

	logger.Debug().Int("files", len(result.Files)).Msg("lot migrated")
	return result, nil
}

// listDieGroups returns the immediate subdirectories of lotDir.
func listDieGroups(lotDir, lot string) ([]string, error) {
	entries, err := os.ReadDir(lotDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MigrateError{Phase: PhaseLocate, Lot: lot, Path: lotDir, Err: ErrNotFound}
		}
		return nil, &MigrateError{Phase: PhaseList, Lot: lot, Path: lotDir, Err: err}
	}

	var groups []string
	for _, entry := range entries {
		ok, err := isDir(lotDir, entry)
		if err != nil {
			return nil, &MigrateError{Phase: PhaseList, Lot: lot, Path: filepath.Join(lotDir, entry.Name()), Err: err}
		}
		if ok {
			groups = append(groups, entry.Name())
		}
	}
	return groups, nil
}

// planGroup locates the image directory of group and derives every destination name.
func planGroup(sourceRoot, destRoot, lot, group string) ([]plannedCopy, error) {
	imageDir := filepath.Join(sourceRoot, lot, group, filepath.FromSlash(ImageSubpath))

	info, err := os.Stat(imageDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &MigrateError{Phase: PhaseLocate, Lot: lot, DieGroup: group, Path: imageDir, Err: err}
	}
	if err != nil || !info.IsDir() {
		return nil, &MigrateError{Phase: PhaseLocate, Lot: lot, DieGroup: group, Path: imageDir, Err: ErrNotFound}
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, &MigrateError{Phase: PhaseList, Lot: lot, DieGroup: group, Path: imageDir, Err: err}
	}

	destDir := filepath.Join(destRoot, lot, group)

	var copies []plannedCopy
	for _, entry := range entries {
		if entry.IsDir() || !text.IsImage(entry.Name()) {
			continue
		}
		src := filepath.Join(imageDir, entry.Name())
		name, err := text.RenameAsset(entry.Name(), lot, group)
		if err != nil {
			return nil, &MigrateError{Phase: PhaseNameParse, Lot: lot, DieGroup: group, Path: src, Err: err}
		}
		copies = append(copies, plannedCopy{
			lot:   lot,
			group: group,
			src:   src,
			dst:   filepath.Join(destDir, name),
		})
	}
	return copies, nil
}

func isDir(parent string, entry os.DirEntry) (bool, error) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// dangling link
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
