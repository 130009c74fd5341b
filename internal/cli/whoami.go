package cli

import (
	"fmt"
	"io"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the tracker user behind the API token",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	identity, err := a.tracker.WhoAmI(ctx)
	if err != nil {
		return err
	}
	return writeIdentity(cmd.OutOrStdout(), identity, a.cfg.Tracker.URL)
}

func writeIdentity(w io.Writer, identity *domain.Identity, trackerURL string) error {
	_, err := fmt.Fprintf(w, "%s (%s)\n  phid:  %s\n  email: %s\n  uri:   %s\n  tracker: %s\n",
		identity.Username,
		identity.RealName,
		identity.PHID,
		identity.Email,
		identity.URI,
		trackerURL,
	)
	return err
}
