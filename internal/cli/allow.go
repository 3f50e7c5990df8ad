package cli

import (
	"fmt"
	"text/tabwriter"

	"assessment-service/internal/app"
	"assessment-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewAllowCmd manages the allow-list in the configured Postgres store.
func NewAllowCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allow",
		Short: "Manage candidates allowed to sign in",
	}

	var entry domain.AllowedCandidate
	add := &cobra.Command{
		Use:   "add",
		Short: "Allow a candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAllowList(cmd, *configPath, func(svc *app.AllowListService) error {
				added, err := svc.Add(cmd.Context(), entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "allowed %s\n", added.Email)
				return nil
			})
		},
	}
	add.Flags().StringVar(&entry.Email, "email", "", "candidate email")
	add.Flags().StringVar(&entry.Name, "name", "", "candidate name")
	add.Flags().StringVar(&entry.Phone, "phone", "", "10-digit phone number")
	add.MarkFlagRequired("email")
	add.MarkFlagRequired("name")
	add.MarkFlagRequired("phone")

	remove := &cobra.Command{
		Use:   "remove <email>",
		Short: "Remove a candidate from the allow-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAllowList(cmd, *configPath, func(svc *app.AllowListService) error {
				return svc.Remove(cmd.Context(), args[0])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List allowed candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAllowList(cmd, *configPath, func(svc *app.AllowListService) error {
				entries, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EMAIL\tNAME\tPHONE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Email, e.Name, e.Phone)
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func withAllowList(cmd *cobra.Command, configPath string, fn func(*app.AllowListService) error) error {
	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if cfg.Postgres.URL == "" {
		return errPostgresRequired
	}
	b, err := openBackends(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(app.NewAllowListService(b.allowed))
}
