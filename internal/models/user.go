// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared between the store
// layer and the HTTP handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. IsAdmin grants the elevated
// privilege that allows editing or deleting entries owned by others and
// moderating comments.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	IsAdmin      bool      `json:"is_admin"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Needs2FASetup returns true if the admin has not completed TOTP
// enrollment yet.
func (u *User) Needs2FASetup() bool {
	return u.TOTPSecret == nil || !u.TOTPEnabled
}
