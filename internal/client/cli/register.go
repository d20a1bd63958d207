package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/papertrader/internal/client/account"
	"github.com/dmitrijs2005/papertrader/internal/common"
	"github.com/dmitrijs2005/papertrader/internal/network"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a user name, an email address and a password and
// provisions the account on the server.
//
// On success it prints "Account created" and remembers the user name and
// session token. Email and password are wiped before returning. A failure
// that leaves the connection unusable drops it so the next command dials
// again.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	accounts, err := a.connect(ctx)
	if err != nil {
		printlnFn("Server unavailable:", err.Error())
		return err
	}

	s, err := accounts.CreateAccount(ctx, userName, []byte(email), password)
	if err != nil {
		printlnFn(registerFailure(err))
		if errors.Is(err, network.ErrConnClosed) || errors.Is(err, network.ErrResponseTimeout) {
			a.disconnect()
		}
		return err
	}

	a.userName = userName
	a.token = s.Token
	a.saveSession(ctx, userName, s.Token)
	printlnFn("Account created")
	return nil
}

func registerFailure(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidUsername):
		return fmt.Sprintf("User name must be 1 to %d bytes", common.MaxUsernameLen)
	case errors.Is(err, common.ErrUserExists):
		return "User name is already taken"
	case errors.Is(err, common.ErrDbWriteFailed):
		return "Server could not store the account, try again later"
	case errors.Is(err, account.ErrSaltRetrievalFailed):
		return "Could not start registration: " + err.Error()
	case errors.Is(err, network.ErrResponseTimeout):
		return "Server did not reply in time"
	case errors.Is(err, account.ErrRegistrationRejected):
		return "Registration rejected: " + err.Error()
	default:
		return "Registration failed: " + err.Error()
	}
}
