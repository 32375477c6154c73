// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// DBErrorType represents the category of a database driver error.
type DBErrorType int

const (
	DBErrorUnknown DBErrorType = iota
	DBErrorNetwork
	DBErrorAuth
	DBErrorTimeout
	DBErrorTLS
	DBErrorDatabase
)

// ParseDBError categorizes a driver error message.
func ParseDBError(errMsg string) DBErrorType {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "login failed") || strings.Contains(lower, "password authentication failed"):
		return DBErrorAuth
	case strings.Contains(lower, "cannot open database") || strings.Contains(lower, "does not exist"):
		return DBErrorDatabase
	case strings.Contains(lower, "tls") || strings.Contains(lower, "certificate"):
		return DBErrorTLS
	case strings.Contains(lower, "i/o timeout") || strings.Contains(lower, "deadline"):
		return DBErrorTimeout
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "unable to open tcp connection") || strings.Contains(lower, "connection reset"):
		return DBErrorNetwork
	}
	return DBErrorUnknown
}

// FormatConnectionError formats a failed connection attempt in a user-friendly way.
func FormatConnectionError(errMsg string) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Failed to connect to database"))
	b.WriteString("\n\n")

	switch ParseDBError(errMsg) {
	case DBErrorAuth:
		b.WriteString("The server rejected the user name or password.\n")
	case DBErrorDatabase:
		b.WriteString("The server is reachable but the database could not be opened.\n")
		b.WriteString("Check the database name in your settings.\n")
	case DBErrorTLS:
		b.WriteString("The encrypted handshake with the server failed.\n")
	case DBErrorTimeout:
		b.WriteString("The server did not answer in time.\n")
	case DBErrorNetwork:
		b.WriteString("The server could not be reached.\n")
		b.WriteString("Check the server address, the port and that SQL Server accepts TCP connections.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'srodbpatch connect' to review the connection settings"))
	b.WriteString("\n")

	if strings.TrimSpace(errMsg) != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}
	return b.String()
}
