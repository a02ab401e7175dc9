// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables:
// legal update categories, the updates themselves and the admin accounts
// that manage them.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is an admin account's permission level, stored as text in users.role.
type Role string

const (
	// RoleAdmin may manage updates, categories and accounts.
	RoleAdmin Role = "admin"
	// RoleEditor may manage updates but not categories.
	RoleEditor Role = "editor"
)

// ParseRole accepts a role name in any case and returns the canonical Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEditor:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsAdmin reports whether r grants category and account management.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanManageUpdates reports whether r may author legal updates.
func (r Role) CanManageUpdates() bool { return r == RoleAdmin || r == RoleEditor }

// User is an admin-panel account with password and TOTP 2FA credentials.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // nil until 2FA setup starts
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role.IsAdmin() }

func (u *User) CanManageUpdates() bool { return u.Role.CanManageUpdates() }

// Needs2FASetup is true until the account has confirmed a TOTP code.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}

// Name is the label shown in the admin sidebar: the display name, or the
// part of the email before the @ when none is set.
func (u *User) Name() string {
	if n := strings.TrimSpace(u.DisplayName); n != "" {
		return n
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
