package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	invctrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/invitation"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/dsn"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	invitationsCleanCmd.Flags().BoolVar(&cleanForce, "force", false, "Skip the confirmation prompt")
	invitationsCleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report what would be removed without removing it")

	invitationsCmd.AddCommand(invitationsCleanCmd)
	rootCmd.AddCommand(invitationsCmd)
}

var (
	cleanForce  bool
	cleanDryRun bool

	invitationsCmd = &cobra.Command{
		Use:   "invitations",
		Short: "Manage invitations from the command line",
		Args:  cobra.OnlyValidArgs,
	}

	invitationsCleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove expired invitations",
		Long: `Remove invitations whose redemption window has passed without a
registration. Pending and registered invitations are never touched.`,
		PreRun: func(_ *cobra.Command, _ []string) {
			if cfg, err = config.ReadConfig(configPath); err != nil {
				panic(err)
			}

			if err = logger.Init(cfg.Log); err != nil {
				panic(err)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := gorm.Open(gormmysql.Open(dsn.Create(&cfg)), &gorm.Config{TranslateError: true})
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}

			count, err := invctrl.CountExpired(db)
			if err != nil {
				return err
			}

			if count == 0 {
				cmd.Println("no expired invitations")
				return nil
			}

			if cleanDryRun {
				cmd.Printf("%d expired invitation(s) would be removed\n", count)
				return nil
			}

			if !cleanForce && !confirm(cmd, fmt.Sprintf("Remove %d expired invitation(s)?", count)) {
				cmd.Println("aborted")
				return nil
			}

			deleted, err := invctrl.SweepExpired(db)
			if err != nil {
				return err
			}

			cmd.Printf("%d expired invitation(s) removed\n", deleted)

			return nil
		},
	}
)

func confirm(cmd *cobra.Command, prompt string) bool {
	cmd.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)

	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}
