package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spaces-client/api"
	"spaces-client/dialog"
	"spaces-client/models"
	"spaces-client/presence"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [nickname]",
	Short: "Log in and store the session token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Go offline and forget the session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	nickname := ""
	if len(args) == 1 {
		nickname = args[0]
	}
	values, err := a.dialogs.Custom(ctx, "Log in", []dialog.Field{
		{Name: "nickname", Label: "Nickname", Default: nickname, Required: true},
		{Name: "password", Label: "Password", Secret: true, Required: true},
	})
	if err != nil {
		return err
	}
	return a.login(ctx, values["nickname"], values["password"])
}

func (a *app) login(ctx context.Context, nickname, password string) error {
	token, err := a.client.Login(ctx, nickname, password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			a.dialogs.Error(ctx, "Login failed", "Wrong nickname or password.")
		}
		return err
	}
	if err := a.store.SetToken(token.AccessToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.store.CacheUser(user); err != nil {
		a.log.Warn().Err(err).Msg("[auth] failed to cache user")
	}
	a.log.Info().Str("nickname", user.Nickname).Msg("[auth] logged in")
	a.dialogs.Success(ctx, "Logged in", "Welcome, "+user.Name()+".")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	values, err := a.dialogs.Custom(ctx, "Create account", []dialog.Field{
		{
			Name:     "nickname",
			Label:    "Nickname",
			Required: true,
			Validate: models.ValidateNickname,
		},
		{
			Name:     "email",
			Label:    "Email (optional)",
			Validate: models.ValidateEmail,
		},
		{Name: "password", Label: "Password", Secret: true, Required: true, Validate: models.ValidatePassword},
		{Name: "confirm", Label: "Repeat password", Secret: true, Required: true},
	})
	if err != nil {
		return err
	}
	if values["password"] != values["confirm"] {
		a.dialogs.Error(ctx, "Registration failed", "Passwords do not match.")
		return errors.New("passwords do not match")
	}

	req := models.RegisterRequest{
		Nickname: values["nickname"],
		Email:    values["email"],
		Password: values["password"],
	}
	if err := req.Validate(); err != nil {
		a.dialogs.Error(ctx, "Registration failed", err.Error())
		return err
	}
	if _, err := a.client.Register(ctx, req); err != nil {
		a.dialogs.Error(ctx, "Registration failed", err.Error())
		return err
	}
	return a.login(ctx, req.Nickname, req.Password)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if a.store.IsAuthenticated() {
		presence.GoOffline(cmd.Context(), a.client, a.cfg.RequestTimeout, a.log)
	}
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	a.dialogs.Success(cmd.Context(), "Logged out", "")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := cmd.Context()
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		cached := a.store.CachedUser()
		if cached == nil {
			return err
		}
		a.log.Warn().Err(err).Msg("[auth] server unreachable, showing cached profile")
		user = cached
	} else if err := a.store.CacheUser(user); err != nil {
		a.log.Warn().Err(err).Msg("[auth] failed to cache user")
	}

	a.view.Profile(*user, "")
	if info, err := a.store.Claims(); err == nil && !info.ExpiresAt.IsZero() {
		a.dialogs.Info(ctx, "Session", "expires "+humanize.Time(info.ExpiresAt)+" ("+info.ExpiresAt.Local().Format(time.RFC1123)+")")
	}
	return nil
}
