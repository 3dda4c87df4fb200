package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var r model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				msg, err := a.auth.Register(cmd.Context(), r)
				if err != nil {
					return err
				}
				if msg == "" {
					msg = "registered"
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&r.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&r.Email, "email", "e", "", "email")
	cmd.Flags().StringVarP(&r.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var c model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.Username == "" && c.Email == "" {
				return fmt.Errorf("%w: need -u or -e", errs.ErrValidation)
			}
			return opts.run(func(a *app) error {
				err := a.auth.Login(cmd.Context(), c)
				if err != nil && !errors.Is(err, errs.ErrStorageUnavailable) {
					return err
				}
				a.notes.Wait()
				if err != nil {
					// logged in for this process only
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", errs.UserMessage(err))
				}
				if bg := a.backgroundErr(); bg != nil {
					a.log.Warn("initial fetch failed", zap.Error(bg))
				}
				printJSON(cmd.OutOrStdout(), map[string]any{"status": "ok", "notes": len(a.notes.Notes())})
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&c.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&c.Email, "email", "e", "", "email")
	cmd.Flags().StringVarP(&c.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				if err := a.auth.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
}

type statusView struct {
	State     string `json:"state"`
	TokenFile string `json:"token_file"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				tok, ok, err := a.store.Load()
				if err != nil {
					return err
				}
				v := statusView{State: model.Anonymous.String(), TokenFile: a.store.Path()}
				if ok {
					v.State = model.Authenticated.String()
					if !tok.ExpiresAt.IsZero() {
						v.ExpiresAt = tok.ExpiresAt.UTC().Format(time.RFC3339)
						if !time.Now().Before(tok.ExpiresAt) {
							v.State = "expired"
						}
					}
				}
				printJSON(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
}
