package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aubattle/battle-client/gateway"
	"github.com/aubattle/battle-client/identity"
)

func profileCmd() *cobra.Command {
	var name, email, phone string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			var patch identity.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("email") {
				patch.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				patch.Phone = &phone
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update; pass --name, --email, or --phone")
			}
			if err := a.manager.UpdateProfile(cmd.Context(), patch); err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Println("Profile updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&phone, "phone", "", "contact number")
	return cmd
}

func avatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Replace the account avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := a.manager.ReplaceAvatar(cmd.Context(), filepath.Base(args[0]), f); err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Printf("Avatar updated: %s\n", a.manager.State().Identity.AvatarURL)
			return nil
		},
	}
}

func changePasswordCmd() *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Rotate the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := a.manager.ChangePassword(cmd.Context(), oldPassword, newPassword)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current coin balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			coins, err := a.manager.RefreshBalance(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Printf("%.2f coins\n", coins)
			return nil
		},
	}
}

func leaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "leaderboard [daily|weekly|monthly]",
		Short:     "Show the coin winners leaderboard",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"daily", "weekly", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			tf := gateway.TimeframeDaily
			if len(args) == 1 {
				tf = gateway.Timeframe(args[0])
			}
			entries, err := a.gateway.Leaderboard(cmd.Context(), a.manager.State().Credential, tf)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			for i, e := range entries {
				fmt.Printf("%3d. %-24s %10.0f coins\n", i+1, e.Name, e.CoinsWon)
			}
			return nil
		},
	}
	return cmd
}

func updatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "updates",
		Short: "Show platform news",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			updates, err := a.gateway.Updates(cmd.Context(), a.manager.State().Credential)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			for _, u := range updates {
				fmt.Printf("%s — %s\n    %s\n", u.CreatedAt, u.Heading, u.Description)
			}
			return nil
		},
	}
}

func withdrawCmd() *cobra.Command {
	var req gateway.WithdrawalRequest
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "File a coin withdrawal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := a.gateway.SubmitWithdrawal(cmd.Context(), a.manager.State().Credential, req)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Amount, "amount", "", "amount to withdraw")
	cmd.Flags().StringVar(&req.Method, "method", "", "JazzCash or EasyPaisa")
	cmd.Flags().StringVar(&req.AccountDetails, "account", "", "payout account details")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show withdrawal history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := restored(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := a.gateway.WithdrawalHistory(cmd.Context(), a.manager.State().Credential)
			if err != nil {
				return fmt.Errorf("%s", gateway.MessageOf(err))
			}
			for _, e := range entries {
				fmt.Printf("%s  %10.2f  %-10s %s\n", e.CreatedAt, e.Amount, e.Method, e.Status)
			}
			return nil
		},
	}
}
