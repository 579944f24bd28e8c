package commands

import (
	"cashback/internal/service"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(svc *service.Service) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cashback",
		Short: "Track which card earns the most cashback per category",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAddBankCommand(svc),
		newAddCardCommand(svc),
		newAddCashbackCommand(svc),
		newRemoveCashbackCommand(svc),
		newAddTransactionCommand(svc),
		newCardListCommand(svc),
		newEstimateCashbackCommand(svc),
		newChooseCardCommand(svc),
	)

	return rootCmd
}
