package cli

import (
	"context"
	"os"

	"github.com/teachbridge/authkit/internal/client/httpapi"
	"github.com/teachbridge/authkit/internal/client/services"
	"github.com/teachbridge/authkit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs the user in. The password byte
// slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getSimpleText(a.reader, "Remember me? (y/N)", os.Stdout)
	if err != nil {
		return err
	}

	res := a.session.Login(ctx, services.Credentials{
		Email:      email,
		Password:   string(password),
		RememberMe: remember == "y" || remember == "Y",
	})
	if !res.Success {
		printlnFn("Login failed:", res.Error)
		return nil
	}

	printlnFn("Welcome back,", res.User.FirstName)
	return nil
}

// Register prompts for account details and creates a new account.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	firstName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}
	school, err := getSimpleText(a.reader, "School (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Register(ctx, httpapi.RegisterRequest{
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
		School:    school,
	})
	if !res.Success {
		printlnFn("Registration failed:", res.Error)
		return nil
	}

	if res.RequiresVerification {
		printlnFn("Account created. Check your email to verify it.")
	} else {
		printlnFn("Account created.")
	}
	return nil
}

// Logout clears the session. Warnings from the best-effort remote call are
// shown but do not fail the command.
func (a *App) Logout(ctx context.Context) error {
	rep := a.session.Logout(ctx)
	for _, w := range rep.Warnings {
		printlnFn("warning:", w)
	}
	printlnFn("Signed out.")
	return nil
}

// WhoAmI shows the current user, fetching it when only tokens are cached.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.GetCurrentUser(ctx)
	if u == nil {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn(u.FirstName, u.LastName, "<"+u.Email+">")
	return nil
}
