package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/go-auth-client/autherrors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/session"
)

func loginCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	if err := provider.Login(ctx, *email, *password); err != nil {
		switch {
		case errors.Is(err, autherrors.ErrAccountUnverified):
			return errors.New("account not verified, please check your email to verify your account")
		case errors.Is(err, autherrors.ErrInvalidCredentials):
			return errors.New("invalid username or password")
		}
		return err
	}

	fmt.Println("Login successful")
	return nil
}

func registerCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "account email")
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	password2 := fs.String("password2", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *username == "" || *password == "" {
		return errors.New("register requires -email, -username and -password")
	}

	if err := provider.Register(ctx, *email, *username, *password, *password2); err != nil {
		var validationErr *autherrors.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("registration failed: %s", validationErr.Message)
		}
		return err
	}

	fmt.Println("Registration successful, login now")
	return nil
}

func whoamiCmd(provider *session.Provider) error {
	state := provider.State()
	if !state.Authenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	identity := state.Identity
	fmt.Printf("Subject:   %s\n", identity.Subject)
	fmt.Printf("Email:     %s\n", identity.Email)
	fmt.Printf("Verified:  %t\n", identity.Verified)
	fmt.Printf("Expires:   %s\n", identity.ExpiresAt)
	if identity.IssuedAt != nil {
		fmt.Printf("Issued:    %s\n", utils.Value(identity.IssuedAt))
	}
	for name, value := range identity.Extra {
		fmt.Printf("%-10s %v\n", name+":", value)
	}
	return nil
}

func profileCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("profile")
	fullName := fs.String("full-name", "", "new display name")
	bio := fs.String("bio", "", "new bio")
	imagePath := fs.String("image", "", "path of a new profile image")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// No flags: just show the profile.
	if *fullName == "" && *bio == "" && *imagePath == "" {
		profile, err := provider.GetProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Username:  %s\n", profile.Username)
		fmt.Printf("Email:     %s\n", profile.Email)
		fmt.Printf("Full name: %s\n", profile.FullName)
		fmt.Printf("Bio:       %s\n", profile.Bio)
		if profile.Image != "" {
			fmt.Printf("Image:     %s\n", profile.Image)
		}
		return nil
	}

	update := session.ProfileUpdate{FullName: *fullName, Bio: *bio}
	if *imagePath != "" {
		image, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		update.Image = image
		update.ImageName = *imagePath
	}

	if err := provider.UpdateProfile(ctx, update); err != nil {
		return err
	}
	fmt.Println("Profile updated successfully")
	return nil
}

func changePasswordCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("change-password")
	current := fs.String("current", "", "current password")
	newPassword := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *current == "" || *newPassword == "" {
		return errors.New("change-password requires -current and -new")
	}

	detail, err := provider.ChangePassword(ctx, *current, *newPassword)
	if err != nil {
		return err
	}
	if detail == "" {
		detail = "Password changed"
	}
	fmt.Println(detail)
	return nil
}

func resetRequestCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("reset-request")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("reset-request requires -email")
	}

	if err := provider.RequestPasswordReset(ctx, *email); err != nil {
		return err
	}
	fmt.Println("Reset link sent, check your email")
	return nil
}

func resetConfirmCmd(ctx context.Context, provider *session.Provider, args []string) error {
	fs := newFlagSet("reset-confirm")
	uid := fs.String("uid", "", "uid from the reset link")
	resetToken := fs.String("token", "", "token from the reset link")
	newPassword := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uid == "" || *resetToken == "" || *newPassword == "" {
		return errors.New("reset-confirm requires -uid, -token and -new")
	}

	if err := provider.ConfirmPasswordReset(ctx, *uid, *resetToken, *newPassword, *confirm); err != nil {
		if errors.Is(err, autherrors.ErrPasswordMismatch) {
			return errors.New("passwords do not match")
		}
		return err
	}
	fmt.Println("Password reset successful, login now")
	return nil
}
