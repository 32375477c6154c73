// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"

	apperrors "srodbpatch/cli/internal/errors"
)

// VersionPreview is the number of version characters Probe keeps.
const VersionPreview = 100

// Probe runs the dialect's read-only version query and returns the server
// version, cut to VersionPreview characters.
func (e *Executor) Probe(ctx context.Context) (string, error) {
	var version string
	if err := e.db.QueryRowContext(ctx, e.dialect.VersionQuery()).Scan(&version); err != nil {
		return "", apperrors.Wrap(apperrors.Connection, "query server version", err)
	}
	if r := []rune(version); len(r) > VersionPreview {
		version = string(r[:VersionPreview]) + "..."
	}
	return version, nil
}
