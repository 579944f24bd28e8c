package commands

import (
	"fmt"

	"cashback/internal/service"

	"github.com/spf13/cobra"
)

func newAddBankCommand(svc *service.Service) *cobra.Command {
	var (
		bankName string
		limit    float64
	)

	cmd := &cobra.Command{
		Use:   "add-bank",
		Short: "Add a bank, optionally with a monthly cashback limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Флаг не задан — банк без лимита.
			var limitArg *float64
			if cmd.Flags().Changed("limit") {
				limitArg = &limit
			}

			bank, err := svc.AddBank(cmd.Context(), bankName, limitArg)
			if err != nil {
				return err
			}
			if bank.Limit == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "added bank %s (no limit)\n", bank.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "added bank %s with limit %.2f\n", bank.Name, *bank.Limit)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bankName, "bank", "b", "", "bank name")
	cmd.Flags().Float64VarP(&limit, "limit", "l", 0, "bank cashback limit")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func newAddCardCommand(svc *service.Service) *cobra.Command {
	var bankName, cardName string

	cmd := &cobra.Command{
		Use:   "add-card",
		Short: "Add a card owned by a bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := svc.AddCard(cmd.Context(), cardName, bankName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added card %s to %s\n", card.Name, bankName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bankName, "bank", "b", "", "bank name")
	cmd.Flags().StringVarP(&cardName, "card", "c", "", "card name")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("card")

	return cmd
}
