package cli

import "context"

// EnableBiometrics turns biometric login on for the signed-in user.
func (a *App) EnableBiometrics(ctx context.Context) error {
	if err := a.session.EnableBiometrics(ctx); err != nil {
		printlnFn("Could not enable biometric login:", err.Error())
		return nil
	}
	printlnFn("Biometric login enabled.")
	return nil
}

// DisableBiometrics turns biometric login off. Safe to repeat.
func (a *App) DisableBiometrics(ctx context.Context) error {
	if err := a.session.DisableBiometrics(ctx); err != nil {
		printlnFn("Could not disable biometric login:", err.Error())
		return nil
	}
	printlnFn("Biometric login disabled.")
	return nil
}

// BiometricLogin signs in via the biometric gate and remembered credentials.
func (a *App) BiometricLogin(ctx context.Context) error {
	res := a.session.AuthenticateWithBiometrics(ctx)
	if !res.Success {
		printlnFn("Biometric login failed:", res.Error)
		return nil
	}
	printlnFn("Welcome back,", res.User.FirstName)
	return nil
}
