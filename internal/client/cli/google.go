package cli

import "context"

// GoogleLogin signs in through the Google OAuth flow.
func (a *App) GoogleLogin(ctx context.Context) error {
	res := a.session.LoginWithGoogle(ctx)
	if !res.Success {
		printlnFn("Google sign-in failed:", res.Error)
		return nil
	}
	printlnFn("Welcome,", res.User.FirstName)
	return nil
}
