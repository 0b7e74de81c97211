package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Betty5562/BookNest/internal/store"
)

var (
	signupName  string
	signupEmail string
	loginEmail  string
)

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, log in, and log out of your BookNest account on this device.`,
}

var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if signupName == "" {
			return fmt.Errorf("name is required (--name)")
		}
		if signupEmail == "" {
			return fmt.Errorf("email is required (--email)")
		}
		if !strings.Contains(signupEmail, "@") {
			return fmt.Errorf("invalid email address: %s", signupEmail)
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		user, err := authSvc.SignUp(cmd.Context(), signupName, signupEmail, password)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome to BookNest, %s!\n", user.Name)
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" {
			return fmt.Errorf("email is required (--email)")
		}
		password, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		user, err := authSvc.LogIn(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authSvc.LogOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd.Context())
		if err != nil {
			return err
		}
		printUser(*user)
		return nil
	},
}

func printUser(u store.User) {
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	if avatar := u.AvatarURL(); avatar != "" {
		fmt.Printf("Avatar: %s\n", avatar)
	}
}

func init() {
	authSignupCmd.Flags().StringVar(&signupName, "name", "", "Display name")
	authSignupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")

	authCmd.AddCommand(authSignupCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
	rootCmd.AddCommand(authCmd)
}
