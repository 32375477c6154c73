// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"regexp"

	apperrors "srodbpatch/cli/internal/errors"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,115}$`)

// validateTables rejects any name that is not a plain identifier on the
// allow-list. It runs before an operation touches the database.
func (e *Executor) validateTables(tables []string) error {
	if len(tables) == 0 {
		return apperrors.New(apperrors.InvalidIdentifier, "no tables given")
	}
	for _, t := range tables {
		if !identRe.MatchString(t) {
			return apperrors.Newf(apperrors.InvalidIdentifier, "invalid table name %q", t)
		}
		if _, ok := e.allowed[t]; !ok {
			return apperrors.Newf(apperrors.InvalidIdentifier, "table %q is not managed by any patch", t)
		}
	}
	return nil
}
