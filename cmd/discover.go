package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"zapper/internal/discovery"
)

var discoverTimeoutSec int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Samsung TVs and cast targets on the network",
	Long: `Browse mDNS for Samsung TVs (_samsungmsf._tcp) and cast targets
(_googlecast._tcp) and list what answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		browser := discovery.NewBrowser()

		timeout := time.Duration(discoverTimeoutSec) * time.Second
		found, err := browser.Browse(cmd.Context(), timeout)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			cmd.Println("No devices found")
			return nil
		}

		cmd.Printf("Found %d device(s):\n", len(found))
		for _, entry := range found {
			kind := "cast"
			if entry.IsTV() {
				kind = "tv"
			}
			cmd.Printf("  [%s] %s\n", kind, entry.Name)
			cmd.Printf("       %s (%s:%d)\n", entry.Host, entry.IP, entry.Port)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeoutSec, "timeout", 3, "seconds to wait for mDNS answers")

	rootCmd.AddCommand(discoverCmd)
}
