// Command authctl is an operator tool for working with propagated
// authorization headers: minting them for test traffic, inspecting captured
// ones, and answering role-hierarchy questions.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rfq-platform/internal/correlation"
	"rfq-platform/internal/domain"
	"rfq-platform/internal/propagation"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Inspect and mint propagated authorization contexts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(encodeCmd(), decodeCmd(), checkRoleCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func encodeCmd() *cobra.Command {
	var userID, tenantID, correlationID string
	var roles []string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build an x-auth-context header value from identity fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]domain.Role, 0, len(roles))
			for _, name := range roles {
				r, ok := domain.ParseRole(name)
				if !ok {
					return fmt.Errorf("unknown role %q", name)
				}
				parsed = append(parsed, r)
			}
			if correlationID == "" {
				correlationID = correlation.NewID()
			}
			ac := &domain.AuthorizationContext{
				Identity:      domain.Identity{UserID: userID},
				Tenant:        domain.Tenant{TenantID: tenantID},
				Roles:         parsed,
				Entitlements:  domain.DefaultEntitlements(),
				CorrelationID: correlationID,
			}
			if err := ac.Validate(); err != nil {
				return err
			}
			encoded, err := propagation.Encode(ac)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (required)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role name, repeatable (required)")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation id (minted when omitted)")
	return cmd
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <header-value>",
		Short: "Decode an x-auth-context header value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := propagation.Decode(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func checkRoleCmd() *cobra.Command {
	var held []string

	cmd := &cobra.Command{
		Use:   "check-role <required-role>",
		Short: "Answer whether a held role set grants a required role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			required, ok := domain.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			heldRoles := make([]domain.Role, 0, len(held))
			for _, name := range held {
				r, ok := domain.ParseRole(name)
				if !ok {
					return fmt.Errorf("unknown role %q", name)
				}
				heldRoles = append(heldRoles, r)
			}
			if domain.HasRole(heldRoles, required) {
				fmt.Fprintf(cmd.OutOrStdout(), "GRANTED: {%s} grants %s\n", strings.Join(held, ", "), required)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DENIED: {%s} does not grant %s\n", strings.Join(held, ", "), required)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&held, "held", nil, "held role name, repeatable")
	return cmd
}
