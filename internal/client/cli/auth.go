package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
	"github.com/dmitrijs2005/linksphere/internal/client/validation"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Home(ctx context.Context, _ []string) error {
	a.println(a.style().title.Render("Welcome to LinkSphere"))
	a.println("Share links with a title and a description, then browse, search and sort what everyone shared.")

	if s := a.authService.Session(); s.IsAuthenticated() {
		a.println(fmt.Sprintf("Logged in as %s. Try 'list', 'upload' or 'dashboard'.", s.User.Username))
		return nil
	}
	if pv, ok := a.authService.PendingVerification(ctx); ok {
		a.println(fmt.Sprintf("A verification code was sent to %s. Type 'verify' to finish signing up.", pv.Email))
		return nil
	}
	a.println("Type 'login' to sign in or 'register' to create an account.")
	return nil
}

func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	// a liveness logout may land between Login and Session
	s := a.authService.Session()
	if !s.IsAuthenticated() {
		return services.ErrNotAuthenticated
	}
	a.success(fmt.Sprintf("Welcome back, %s!", s.User.Username))

	if err := a.linkService.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "could not load links after login", "error", err)
	}
	return nil
}

// Register collects the sign-up form. Password rules are checked before the
// gender prompt so a weak password is reported straight away.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Choose a username (3-50 letters, digits or _)", a.out)
	if err != nil {
		return err
	}
	if !validation.ValidUsername(username) {
		return validation.Errors{"username": "username must be 3-50 characters of letters, digits or underscores"}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	if problems := validation.PasswordProblems(password); len(problems) > 0 {
		return validation.Errors{"password": "password must contain " + strings.Join(problems, ", ")}
	}

	rawGender, err := getSimpleText(a.reader, "Gender (male, female, other)", a.out)
	if err != nil {
		return err
	}
	gender, err := models.ParseGender(rawGender)
	if err != nil {
		return validation.Errors{"gender": "gender must be one of: male, female, other"}
	}

	reg := models.Registration{Email: email, Username: username, Password: password, Gender: gender}
	if err := a.authService.Register(ctx, reg); err != nil {
		return err
	}

	a.success("Account created! We sent a 6-digit code to " + email + ".")
	a.println("Type 'verify' to enter it, or 'resend' if it did not arrive.")
	return nil
}

// verificationEmail uses the pending registration when there is one and
// asks otherwise.
func (a *App) verificationEmail(ctx context.Context) (string, error) {
	if pv, ok := a.authService.PendingVerification(ctx); ok {
		return pv.Email, nil
	}
	return getSimpleText(a.reader, "Enter the email you registered with", a.out)
}

func (a *App) Verify(ctx context.Context, args []string) error {
	email, err := a.verificationEmail(ctx)
	if err != nil {
		return err
	}

	var otp string
	if len(args) > 0 {
		otp = args[0]
	} else if otp, err = getSimpleText(a.reader, "Enter the 6-digit code sent to "+email, a.out); err != nil {
		return err
	}

	if err := a.authService.VerifyEmail(ctx, email, otp); err != nil {
		return err
	}
	a.success("Email verified! You can now 'login'.")
	return nil
}

func (a *App) Resend(ctx context.Context, _ []string) error {
	if remaining := a.authService.ResendCooldownRemaining(); remaining > 0 {
		a.println(fmt.Sprintf("You can request a new code in %ds.", int(math.Ceil(remaining.Seconds()))))
		return nil
	}

	email, err := a.verificationEmail(ctx)
	if err != nil {
		return err
	}
	if err := a.authService.ResendOTP(ctx, email); err != nil {
		return err
	}
	a.success("A new code is on its way to " + email + ".")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.authService.Logout(ctx)
	a.println("Logged out.")
	return nil
}

var errUsage = errors.New("wrong arguments")

func usage(text string) error {
	return fmt.Errorf("%w, usage: %s", errUsage, text)
}
