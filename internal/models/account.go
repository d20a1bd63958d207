// Package models defines the account data shared by the server store and
// the provisioning protocol.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a provisioned user. Only derived credential material is kept:
// the stored hashes are the server-phase output and the salts are what a
// later login needs to rebuild them.
type Account struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`

	EmailHash       []byte `db:"email_hash"`
	ServerEmailSalt []byte `db:"server_email_salt"`
	ClientEmailSalt []byte `db:"client_email_salt"`

	PassHash       []byte `db:"pass_hash"`
	ServerPassSalt []byte `db:"server_pass_salt"`
	ClientPassSalt []byte `db:"client_pass_salt"`

	IsPass bool `db:"is_pass"`

	Portfolio    Portfolio  `db:"portfolio"`
	Transactions []Position `db:"transactions"`

	CreatedAt time.Time `db:"created_at"`
}
