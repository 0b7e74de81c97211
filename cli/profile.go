package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	profileName   string
	profileEmail  string
	profileAvatar string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile and shelf stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		stats, err := profileSvc.Stats(ctx, user.ID)
		if err != nil {
			return err
		}
		printUser(*user)
		fmt.Printf("Books Owned: %d | Favorites: %d | Total Books: %d\n", stats.Owned, stats.Favorites, stats.Total)
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit name and email",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}

		name := profileName
		if name == "" {
			name = user.Name
		}
		email := profileEmail
		if email == "" {
			email = user.Email
		}
		if !strings.Contains(email, "@") {
			return fmt.Errorf("invalid email address: %s", email)
		}

		updated, err := profileSvc.Update(ctx, *user, name, email)
		if err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		printUser(*updated)
		return nil
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar",
	Short: "Set your avatar URI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(ctx)
		if err != nil {
			return err
		}
		if profileAvatar == "" {
			return fmt.Errorf("avatar URI is required (--uri)")
		}
		if _, err := profileSvc.SetAvatar(ctx, *user, profileAvatar); err != nil {
			return err
		}
		fmt.Println("Avatar updated.")
		return nil
	},
}

func init() {
	profileEditCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileEditCmd.Flags().StringVar(&profileEmail, "email", "", "New email address")
	profileAvatarCmd.Flags().StringVar(&profileAvatar, "uri", "", "Avatar image URI")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	rootCmd.AddCommand(profileCmd)
}
