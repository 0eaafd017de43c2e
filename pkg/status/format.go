// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	lotIndent  = 4  // spaces to indent lot entries
	lotWidth   = 30 // width for the lot id
	stateWidth = 10 // width for the outcome text
)

// 🎯 FormatLotOperation formats one lot outcome for the console
func FormatLotOperation(lot, state, detail string, isMigrated, isFailed, isSkipped bool) string {
	var prefix string
	switch {
	case isMigrated:
		prefix = color.GreenString("✓")
	case isFailed:
		prefix = color.RedString("✗")
	case isSkipped:
		prefix = color.YellowString("⟳")
	default:
		prefix = color.HiBlackString("-")
	}

	lotPart := fmt.Sprintf("%-*s", lotWidth, lot)
	statePart := fmt.Sprintf("%-*s", stateWidth, state)

	line := fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", lotIndent),
		prefix,
		lotPart,
		statePart,
	)
	if detail != "" {
		line += " " + detail
	}
	return strings.TrimRight(line, " ")
}

// FormatSummary formats the closing line of a batch
func FormatSummary(migrated, failed, skipped int) string {
	parts := []string{color.GreenString("%d migrated", migrated)}
	if failed > 0 {
		parts = append(parts, color.RedString("%d failed", failed))
	} else {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	if skipped > 0 {
		parts = append(parts, color.YellowString("%d skipped", skipped))
	}
	return strings.Join(parts, ", ")
}
