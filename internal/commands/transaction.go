package commands

import (
	"fmt"

	"cashback/internal/service"

	"github.com/spf13/cobra"
)

func newAddTransactionCommand(svc *service.Service) *cobra.Command {
	var (
		cardName     string
		categoryName string
		value        float64
	)

	cmd := &cobra.Command{
		Use:   "add-transaction",
		Short: "Record a purchase against a card's cashback category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Transaction(cmd.Context(), cardName, categoryName, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded transaction %s %s %.2f\n", cardName, categoryName, value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cardName, "card", "c", "", "card name")
	cmd.Flags().StringVar(&categoryName, "category", "", "category name")
	cmd.Flags().Float64VarP(&value, "value", "v", 0, "transaction value")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
