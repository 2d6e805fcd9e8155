// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/affinity/internal/auth"
	"github.com/tomtom215/affinity/internal/logging"
)

type tokenOptions struct {
	secret  string
	issuer  string
	subject string
	role    string
	ttl     time.Duration
}

// IssuedToken is the token command result.
type IssuedToken struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCommand(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 JWT for the HTTP API",
		Long: `Mint a token the server accepts in AUTH_MODE=jwt. The secret and issuer
must match JWT_SECRET and JWT_ISSUER on the server. --secret defaults to
$JWT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := runToken(opts, time.Now())
			if err != nil {
				return err
			}
			if root.output == FormatJSON {
				return emit(cmd.OutOrStdout(), root.output, tok, table{})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.secret, "secret", os.Getenv("JWT_SECRET"), "signing secret (32+ characters)")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "affinity", "token issuer")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "username the token is issued to")
	cmd.Flags().StringVar(&opts.role, "role", auth.RoleViewer, "role: viewer, editor or admin")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(opts *tokenOptions, now time.Time) (*IssuedToken, error) {
	switch opts.role {
	case auth.RoleViewer, auth.RoleEditor, auth.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", opts.role)
	}
	if opts.secret == "" {
		return nil, errors.New("--secret or JWT_SECRET is required")
	}

	manager, err := auth.NewJWTManager(opts.secret, opts.issuer, opts.ttl)
	if err != nil {
		return nil, err
	}
	token, err := manager.GenerateToken(opts.subject, opts.role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	logging.NewAuditLogger(logging.Logger()).TokenIssued(opts.subject, opts.role, token)
	return &IssuedToken{
		Token:     token,
		Subject:   opts.subject,
		Role:      opts.role,
		ExpiresAt: now.Add(opts.ttl).UTC().Truncate(time.Second),
	}, nil
}
