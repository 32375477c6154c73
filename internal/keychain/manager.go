// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the database password in the OS credential store
// when the operator opts out of keeping it in the plain settings file.
//
// It wraps 99designs/keyring with a thread-safe manager limited to native
// platform backends: macOS Keychain, Windows Credential Manager, and the
// Secret Service, KWallet or pass on Linux. There is no encrypted-file
// fallback, so a host without a credential store reports an error instead of
// silently writing secrets to disk.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "srodbpatch"

// KeyDBPassword is the item holding the SQL Server password.
const KeyDBPassword = "db_password"

// ErrNotFound is returned when no password has been stored.
var ErrNotFound = errors.New("no password stored in keychain")

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides thread-safe access to the password item.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the process-wide manager, opening the keyring on first
// use. A failed open is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

// SavePassword stores the database password.
func (m *Manager) SavePassword(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:         KeyDBPassword,
		Data:        []byte(password),
		Label:       "srodbpatch database password",
		Description: "SQL Server password used by srodbpatch",
	})
}

// LoadPassword returns the stored password or ErrNotFound.
func (m *Manager) LoadPassword() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyDBPassword)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(it.Data), nil
}

// ClearDB removes the stored password. A missing item is not an error.
func (m *Manager) ClearDB() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(KeyDBPassword); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
