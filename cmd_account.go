package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"spaces-client/models"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:       "status [online|away|dnd|offline]",
	Short:     "Show or set your presence status",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"online", "away", "dnd", "offline"},
	RunE:      runStatus,
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotifications,
}

var profileCmd = &cobra.Command{
	Use:   "profile [nickname]",
	Short: "Show a profile, or edit your own with flags",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfile,
}

var (
	flagUnreadOnly  bool
	flagMarkRead    bool
	flagNotifyLimit int

	flagDisplayName string
	flagBio         string
	flagAvatar      string
	flagBanner      string
)

func init() {
	notificationsCmd.Flags().BoolVar(&flagUnreadOnly, "unread", false, "only unread notifications")
	notificationsCmd.Flags().BoolVar(&flagMarkRead, "mark-read", false, "mark everything read after listing")
	notificationsCmd.Flags().IntVarP(&flagNotifyLimit, "limit", "n", 20, "maximum number to list")

	profileCmd.Flags().StringVar(&flagDisplayName, "display-name", "", "set your display name")
	profileCmd.Flags().StringVar(&flagBio, "bio", "", "set your bio")
	profileCmd.Flags().StringVar(&flagAvatar, "avatar", "", "upload an avatar image")
	profileCmd.Flags().StringVar(&flagBanner, "banner", "", "upload a profile banner image")

	rootCmd.AddCommand(statusCmd, notificationsCmd, profileCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 1 {
		status := models.Status(args[0])
		if err := a.client.SetStatus(ctx, status); err != nil {
			return err
		}
		a.dialogs.Success(ctx, "Status", status.Label())
		return nil
	}

	st, err := a.client.MyStatus(ctx)
	if err != nil {
		return err
	}
	a.dialogs.Info(ctx, "Status", st.Status.Label())
	return nil
}

func runNotifications(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if flagUnreadOnly && !flagMarkRead {
		n, err := a.client.UnreadCount(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			a.view.Notifications(nil)
			return nil
		}
	}

	list, err := a.client.Notifications(ctx, flagUnreadOnly, flagNotifyLimit)
	if err != nil {
		return err
	}
	a.view.Notifications(list)

	if !flagMarkRead {
		return nil
	}
	if !flagUnreadOnly {
		return a.client.MarkAllNotificationsRead(ctx)
	}
	// only what was shown
	for _, n := range list {
		if n.IsRead {
			continue
		}
		if err := a.client.MarkNotificationRead(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := open(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if len(args) == 1 {
		u, err := a.client.ProfileByNickname(ctx, args[0])
		if err != nil {
			return err
		}
		a.view.Profile(*u, "")
		return nil
	}

	flags := cmd.Flags()
	var upd models.ProfileUpdate
	if flags.Changed("display-name") {
		upd.DisplayName = &flagDisplayName
	}
	if flags.Changed("bio") {
		upd.Bio = &flagBio
	}
	if upd.DisplayName != nil || upd.Bio != nil {
		if _, err := a.client.UpdateProfile(ctx, upd); err != nil {
			return err
		}
	}

	for _, img := range []struct {
		path   string
		upload func(string, *os.File) error
	}{
		{flagAvatar, func(name string, f *os.File) error { _, err := a.client.UploadAvatar(ctx, name, f); return err }},
		{flagBanner, func(name string, f *os.File) error { _, err := a.client.UploadBanner(ctx, name, f); return err }},
	} {
		if img.path == "" {
			continue
		}
		if err := uploadImage(img.path, img.upload); err != nil {
			return err
		}
	}

	me, err := a.client.MyProfile(ctx)
	if err != nil {
		return err
	}
	if err := a.store.CacheUser(me); err != nil {
		a.log.Warn().Err(err).Msg("[auth] failed to cache user")
	}
	a.view.Profile(*me, "")
	return nil
}

func uploadImage(path string, upload func(string, *os.File) error) error {
	name := filepath.Base(path)
	if kind, ok := models.FileKind(mime.TypeByExtension(filepath.Ext(name))); !ok || kind != models.KindImage {
		return fmt.Errorf("%s is not a supported image", name)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return upload(name, f)
}
