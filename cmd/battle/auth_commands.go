package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aubattle/battle-client/gateway"
	"github.com/aubattle/battle-client/identity"
)

// promptIfEmpty reads a value from stdin when the flag was not supplied.
func promptIfEmpty(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			pw, err := promptIfEmpty(password, "Password")
			if err != nil {
				return err
			}
			if err := a.manager.Login(cmd.Context(), args[0], pw); err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			st := a.manager.State()
			fmt.Printf("Logged in as %s (#%d)\n", st.Identity.Name, st.Identity.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func signupCmd() *cobra.Command {
	var data identity.SignupData
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if data.PasswordConfirmation == "" {
				data.PasswordConfirmation = data.Password
			}
			if err := a.manager.Signup(cmd.Context(), data); err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			st := a.manager.State()
			fmt.Printf("Welcome, %s (#%d)\n", st.Identity.Name, st.Identity.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&data.Name, "name", "", "display name")
	cmd.Flags().StringVar(&data.Handle, "handle", "", "in-game handle")
	cmd.Flags().StringVar(&data.Phone, "phone", "", "contact number")
	cmd.Flags().StringVar(&data.Email, "email", "", "account email")
	cmd.Flags().StringVar(&data.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("handle")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			a.manager.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			st := a.manager.State()
			fmt.Printf("%s <%s>\n", st.Identity.Name, st.Identity.Email)
			fmt.Printf("  id:      %d\n", st.Identity.ID)
			fmt.Printf("  handle:  %s\n", st.Identity.Handle)
			fmt.Printf("  role:    %s\n", st.Identity.Role)
			fmt.Printf("  balance: %.2f coins\n", st.Identity.Balance)
			if st.Stale {
				fmt.Println("  (offline: profile could not be refreshed, showing cached data)")
			}
			return nil
		},
	}
}

func forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := a.gateway.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	var data gateway.ResetPasswordData
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Complete an emailed password reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if data.PasswordConfirmation == "" {
				data.PasswordConfirmation = data.Password
			}
			msg, err := a.gateway.ResetPassword(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&data.Email, "email", "", "account email")
	cmd.Flags().StringVar(&data.Token, "token", "", "reset token from the email")
	cmd.Flags().StringVar(&data.Password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
