package cli

import (
	"context"
	"os"

	"github.com/teachbridge/authkit/internal/common"
)

// ChangePassword updates the signed-in user's password.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.session.ChangePassword(ctx, string(current), string(next)); err != nil {
		printlnFn("Password change failed:", common.UserMessage(err))
		return nil
	}
	printlnFn("Password changed.")
	return nil
}

// ForgotPassword starts the email-based reset flow.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.ForgotPassword(ctx, email); err != nil {
		printlnFn("Request failed:", common.UserMessage(err))
		return nil
	}
	printlnFn("Check your email for a reset link.")
	return nil
}

// ResetPassword completes the reset flow with the emailed token.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Reset token", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.ResetPassword(ctx, token, string(password)); err != nil {
		printlnFn("Reset failed:", common.UserMessage(err))
		return nil
	}
	printlnFn("Password reset. You can sign in now.")
	return nil
}
